package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"happymoney/internal/core"
)

// TransactionForm is the user-entered shape of a new or edited event.
// An empty ID means create; a set ID means update.
type TransactionForm struct {
	ID        string
	Date      string
	Item      string
	Amount    int64
	MoodScore int
}

// ListTransactions returns every event owned by the user.
func (c *Client) ListTransactions(ctx context.Context, userID string) ([]core.Transaction, error) {
	query := url.Values{"user_id": {userID}}
	var txs []core.Transaction
	if err := c.doResilient(ctx, http.MethodGet, "/transactions", query, nil, &txs); err != nil {
		return nil, err
	}
	return txs, nil
}

// GetTransaction fetches one event, serving repeats from the LRU cache.
func (c *Client) GetTransaction(ctx context.Context, txID string) (core.Transaction, error) {
	if tx, ok := c.txCache.Get(txID); ok {
		return tx, nil
	}

	var tx core.Transaction
	if err := c.doResilient(ctx, http.MethodGet, "/transactions/"+url.PathEscape(txID), nil, nil, &tx); err != nil {
		return core.Transaction{}, err
	}
	c.txCache.Set(txID, tx)
	return tx, nil
}

// SaveTransaction creates or updates an event. The server computes the
// happy amount; the returned transaction carries it.
func (c *Client) SaveTransaction(ctx context.Context, userID string, form TransactionForm) (core.Transaction, error) {
	payload := map[string]any{
		"date":       form.Date,
		"item":       form.Item,
		"amount":     form.Amount,
		"mood_score": form.MoodScore,
	}

	method := http.MethodPost
	path := "/transactions"
	if form.ID != "" {
		method = http.MethodPut
		path += "/" + url.PathEscape(form.ID)
	} else {
		payload["user_id"] = userID
	}

	var tx core.Transaction
	if err := c.do(ctx, method, path, nil, payload, &tx); err != nil {
		return core.Transaction{}, err
	}
	c.txCache.Set(tx.ID, tx)
	return tx, nil
}

// DeleteTransaction removes an event.
func (c *Client) DeleteTransaction(ctx context.Context, txID string) error {
	if err := c.do(ctx, http.MethodDelete, "/transactions/"+url.PathEscape(txID), nil, nil, nil); err != nil {
		return err
	}
	c.txCache.Delete(txID)
	return nil
}

func setIntParam(query url.Values, key string, value *int) {
	if value != nil {
		query.Set(key, strconv.Itoa(*value))
	}
}
