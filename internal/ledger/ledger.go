// internal/ledger/ledger.go
//
// Win recorder: writes a completed win to the on-chain leaderboard contract
// through a thirdweb-engine-style relayer.
//
// The call is best-effort relative to the local game record: the session
// manager persists the winning guess first, calls RecordWin afterwards, and
// treats any failure here as a soft warning. No session lock is ever held
// across this network call.

package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// Engine posts contract writes to a relayer endpoint:
//
//	POST {base}/contract/{chainID}/{contract}/write
//	Authorization: Bearer {accessToken}
//	x-backend-wallet-address: {walletAddress}
//	{"functionName":"recordWinner","args":[gameID, winner, guessCount]}
//
// The relayer queues the transaction and answers with a queue id, which we
// hand back to the caller as the transaction reference.
type Engine struct {
	baseURL       string
	chainID       string
	contract      string
	accessToken   string
	walletAddress string
	client        *http.Client
}

// NewEngine constructs a relayer client. timeout bounds each write call.
func NewEngine(baseURL, chainID, contract, accessToken, walletAddress string, timeout time.Duration) *Engine {
	return &Engine{
		baseURL:       baseURL,
		chainID:       chainID,
		contract:      contract,
		accessToken:   accessToken,
		walletAddress: walletAddress,
		client:        &http.Client{Timeout: timeout},
	}
}

type writeReq struct {
	FunctionName string `json:"functionName"`
	Args         []any  `json:"args"`
}

type writeRes struct {
	Result struct {
		QueueID string `json:"queueId"`
	} `json:"result"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// RecordWin submits recordWinner(gameID, winner, guessCount) and returns the
// relayer's queue id as the transaction reference. guessCount is the
// 1-indexed number of the winning guess.
func (e *Engine) RecordWin(ctx context.Context, gameID, winner string, guessCount int) (string, error) {
	url := fmt.Sprintf("%s/contract/%s/%s/write", e.baseURL, e.chainID, e.contract)

	body, err := json.Marshal(writeReq{
		FunctionName: "recordWinner",
		Args:         []any{gameID, winner, guessCount},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.accessToken)
	req.Header.Set("x-backend-wallet-address", e.walletAddress)

	res, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ledger write: %w", err)
	}
	defer res.Body.Close()

	var parsed writeRes
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("ledger write: decode response: %w", err)
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		if parsed.Error.Message != "" {
			return "", fmt.Errorf("ledger write: %s (status %d)", parsed.Error.Message, res.StatusCode)
		}
		return "", fmt.Errorf("ledger write: status %d", res.StatusCode)
	}

	log.Info().
		Str("gameId", gameID).
		Str("winner", winner).
		Int("guessCount", guessCount).
		Str("queueId", parsed.Result.QueueID).
		Msg("win recorded on chain")
	return parsed.Result.QueueID, nil
}

// Disabled is the recorder used when no relayer is configured. Wins are
// still authoritative locally; there is just no transaction reference.
type Disabled struct{}

func (Disabled) RecordWin(ctx context.Context, gameID, winner string, guessCount int) (string, error) {
	log.Debug().Str("gameId", gameID).Msg("ledger disabled, skipping win record")
	return "", nil
}
