package journal

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const tradeColumns = `trade_id, account_id, symbol, trade_type, strategy, direction,
	quantity, contracts, entry_price, close_price, premium, total_premium,
	opened_at, closed_at, realized_pnl, pnl_percent, outcome`

// GetTrade returns a single journaled trade by id.
func (j *SQLite) GetTrade(tradeID string) (TradeRecord, error) {
	row := j.db.QueryRow(`
		SELECT `+tradeColumns+`
		FROM trades
		WHERE trade_id = ?`, tradeID)

	rec, err := scanTrade(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return TradeRecord{}, fmt.Errorf("trade %q not found", tradeID)
		}
		return TradeRecord{}, err
	}
	return rec, nil
}

// ListTradesClosedBetween returns trades whose close time is within
// [start, end), oldest first.
func (j *SQLite) ListTradesClosedBetween(start, end time.Time) ([]TradeRecord, error) {
	rows, err := j.db.Query(`
		SELECT `+tradeColumns+`
		FROM trades
		WHERE closed_at >= ? AND closed_at < ?
		ORDER BY closed_at ASC`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		rec, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListTradesByAccount returns every journaled trade for the account, oldest
// close first.
func (j *SQLite) ListTradesByAccount(accountID string) ([]TradeRecord, error) {
	rows, err := j.db.Query(`
		SELECT `+tradeColumns+`
		FROM trades
		WHERE account_id = ?
		ORDER BY closed_at ASC`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		rec, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTrade(s scanner) (TradeRecord, error) {
	var (
		rec TradeRecord

		quantity, entryPrice, closePrice string
		premium, totalPremium, realized  string
		pnlPercent                       string
	)

	if err := s.Scan(
		&rec.TradeID, &rec.AccountID, &rec.Symbol, &rec.TradeType,
		&rec.Strategy, &rec.Direction,
		&quantity, &rec.Contracts,
		&entryPrice, &closePrice, &premium, &totalPremium,
		&rec.OpenedAt, &rec.ClosedAt,
		&realized, &pnlPercent, &rec.Outcome,
	); err != nil {
		return TradeRecord{}, err
	}

	var err error
	if rec.Quantity, err = decimal.NewFromString(quantity); err != nil {
		return TradeRecord{}, fmt.Errorf("journal: bad quantity %q: %w", quantity, err)
	}
	if rec.EntryPrice, err = decimal.NewFromString(entryPrice); err != nil {
		return TradeRecord{}, fmt.Errorf("journal: bad entry price %q: %w", entryPrice, err)
	}
	if rec.ClosePrice, err = decimal.NewFromString(closePrice); err != nil {
		return TradeRecord{}, fmt.Errorf("journal: bad close price %q: %w", closePrice, err)
	}
	if rec.Premium, err = decimal.NewFromString(premium); err != nil {
		return TradeRecord{}, fmt.Errorf("journal: bad premium %q: %w", premium, err)
	}
	if rec.TotalPremium, err = decimal.NewFromString(totalPremium); err != nil {
		return TradeRecord{}, fmt.Errorf("journal: bad total premium %q: %w", totalPremium, err)
	}
	if rec.RealizedPnl, err = decimal.NewFromString(realized); err != nil {
		return TradeRecord{}, fmt.Errorf("journal: bad realized pnl %q: %w", realized, err)
	}
	if rec.PnlPercent, err = decimal.NewFromString(pnlPercent); err != nil {
		return TradeRecord{}, fmt.Errorf("journal: bad pnl percent %q: %w", pnlPercent, err)
	}

	return rec, nil
}
