// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package journal is the reconciliation log of the pool: every reward
// distribution with its payouts, and every withdrawal whose funds could not
// be returned. It is written alongside the stake store and never read back
// to drive staking decisions.
package journal

import (
	"context"
	"database/sql"

	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/pborman/uuid"
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/pool"
)

type Journal struct {
	path          string
	db            *sql.DB
	driverVersion string
}

// New create or open journal at given path.
func New(path string) (journal *Journal, err error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if journal == nil {
			db.Close()
		}
	}()
	// an in-memory database lives as long as its only connection
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(distributionTableSchema + payoutTableSchema + unreturnedTableSchema); err != nil {
		return nil, err
	}

	driverVer, _, _ := sqlite3.Version()
	return &Journal{
		path,
		db,
		driverVer,
	}, nil
}

// NewMem create a journal in ram.
func NewMem() (*Journal, error) {
	return New(":memory:")
}

// Close close the journal.
func (j *Journal) Close() error {
	return j.db.Close()
}

func (j *Journal) Path() string {
	return j.path
}

func (j *Journal) DriverVersion() string {
	return j.driverVersion
}

// NewDistributionID returns a fresh distribution id.
func NewDistributionID() string {
	return uuid.NewRandom().String()
}

// RecordDistribution stores a distribution with its planned payouts in one transaction.
func (j *Journal) RecordDistribution(ctx context.Context, d *Distribution, payouts []*Payout) error {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO distribution(id, source, amount, totalStake, status, held, dust, paid, createdAt) VALUES(?,?,?,?,?,?,?,?,?)",
		d.ID,
		d.Source.Bytes(),
		u64(d.Amount),
		d.TotalStake,
		string(d.Status),
		u64(d.Held),
		u64(d.Dust),
		u64(d.Paid),
		u64(d.CreatedAt),
	); err != nil {
		return errors.Wrap(err, "insert distribution")
	}

	if len(payouts) > 0 {
		stmt, err := tx.PrepareContext(ctx,
			"INSERT INTO payout(distributionID, seq, owner, sub, stake, reward, status, err) VALUES(?,?,?,?,?,?,?,?)")
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, p := range payouts {
			if _, err := stmt.ExecContext(ctx,
				d.ID,
				p.Seq,
				p.Owner.Bytes(),
				p.Sub.Bytes(),
				u64(p.Stake),
				u64(p.Reward),
				string(p.Status),
				p.Err,
			); err != nil {
				return errors.Wrap(err, "insert payout")
			}
		}
	}
	return tx.Commit()
}

// SettlePayout updates the outcome of one payout.
func (j *Journal) SettlePayout(ctx context.Context, distributionID string, seq int, status Status, cause string) error {
	return j.exec1(ctx,
		"UPDATE payout SET status = ?, err = ? WHERE distributionID = ? AND seq = ?",
		string(status), cause, distributionID, seq,
	)
}

// SettleDistribution updates the outcome of a distribution.
func (j *Journal) SettleDistribution(ctx context.Context, id string, status Status, paid uint64) error {
	return j.exec1(ctx,
		"UPDATE distribution SET status = ?, paid = ? WHERE id = ?",
		string(status), u64(paid), id,
	)
}

// RecordUnreturned stores a withdrawal whose return transfer failed.
func (j *Journal) RecordUnreturned(ctx context.Context, u *Unreturned) error {
	_, err := j.db.ExecContext(ctx,
		"INSERT INTO unreturned(owner, sub, depositID, amount, err, createdAt) VALUES(?,?,?,?,?,?)",
		u.Owner.Bytes(),
		u.Sub.Bytes(),
		u64(u.DepositID),
		u64(u.Amount),
		u.Err,
		u64(u.CreatedAt),
	)
	return errors.Wrap(err, "insert unreturned")
}

func (j *Journal) exec1(ctx context.Context, stmt string, args ...any) error {
	res, err := j.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n != 1 {
		return errors.Errorf("expected 1 row affected, got %d", n)
	}
	return nil
}

// Distribution returns the distribution with the given id, or nil.
func (j *Journal) Distribution(ctx context.Context, id string) (*Distribution, error) {
	list, err := j.queryDistributions(ctx, "SELECT * FROM distribution WHERE id = ?", id)
	if err != nil || len(list) == 0 {
		return nil, err
	}
	return list[0], nil
}

// Distributions lists distributions matching filter.
func (j *Journal) Distributions(ctx context.Context, filter *Filter) ([]*Distribution, error) {
	if filter == nil {
		return j.queryDistributions(ctx, "SELECT * FROM distribution ORDER BY createdAt ASC, rowid ASC")
	}
	var args []any
	stmt := "SELECT * FROM distribution WHERE 1"
	if filter.Owner != nil {
		args = append(args, filter.Owner.Bytes())
		stmt += " AND source = ? "
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		stmt += " AND status = ? "
	}
	stmt, args = filter.apply(stmt, args)
	return j.queryDistributions(ctx, stmt, args...)
}

// Payouts lists the payouts of one distribution in payout order.
func (j *Journal) Payouts(ctx context.Context, distributionID string) ([]*Payout, error) {
	rows, err := j.db.QueryContext(ctx,
		"SELECT * FROM payout WHERE distributionID = ? ORDER BY seq ASC", distributionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payouts []*Payout
	for rows.Next() {
		var (
			p            Payout
			owner, sub   []byte
			stake, rew   u64
			status, errs string
		)
		if err := rows.Scan(&p.DistributionID, &p.Seq, &owner, &sub, &stake, &rew, &status, &errs); err != nil {
			return nil, err
		}
		p.Owner = pool.BytesToAddress(owner)
		p.Sub = pool.BytesToBytes32(sub)
		p.Stake = uint64(stake)
		p.Reward = uint64(rew)
		p.Status = Status(status)
		p.Err = errs
		payouts = append(payouts, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return payouts, nil
}

// Unreturned lists unreturned withdrawals matching filter.
func (j *Journal) Unreturned(ctx context.Context, filter *Filter) ([]*Unreturned, error) {
	cols := "SELECT owner, sub, depositID, amount, err, createdAt FROM unreturned"
	if filter == nil {
		return j.queryUnreturned(ctx, cols+" ORDER BY createdAt ASC, seq ASC")
	}
	var args []any
	stmt := cols + " WHERE 1"
	if filter.Owner != nil {
		args = append(args, filter.Owner.Bytes())
		stmt += " AND owner = ? "
	}
	stmt, args = filter.apply(stmt, args)
	return j.queryUnreturned(ctx, stmt, args...)
}

func (f *Filter) apply(stmt string, args []any) (string, []any) {
	if f.From > 0 {
		args = append(args, u64(f.From))
		stmt += " AND createdAt >= ? "
	}
	if f.To > 0 {
		args = append(args, u64(f.To))
		stmt += " AND createdAt <= ? "
	}
	if f.Order == DESC {
		stmt += " ORDER BY createdAt DESC, rowid DESC "
	} else {
		stmt += " ORDER BY createdAt ASC, rowid ASC "
	}
	if f.Options != nil {
		stmt += " limit ?, ? "
		args = append(args, u64(f.Options.Offset), u64(f.Options.Limit))
	}
	return stmt, args
}

func (j *Journal) queryDistributions(ctx context.Context, stmt string, args ...any) ([]*Distribution, error) {
	rows, err := j.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*Distribution
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		var (
			d                                   Distribution
			source                              []byte
			status                              string
			amount, held, dust, paid, createdAt u64
		)
		if err := rows.Scan(
			&d.ID,
			&source,
			&amount,
			&d.TotalStake,
			&status,
			&held,
			&dust,
			&paid,
			&createdAt,
		); err != nil {
			return nil, err
		}
		d.Source = pool.BytesToAddress(source)
		d.Amount = uint64(amount)
		d.Status = Status(status)
		d.Held = uint64(held)
		d.Dust = uint64(dust)
		d.Paid = uint64(paid)
		d.CreatedAt = uint64(createdAt)
		list = append(list, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

func (j *Journal) queryUnreturned(ctx context.Context, stmt string, args ...any) ([]*Unreturned, error) {
	rows, err := j.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*Unreturned
	for rows.Next() {
		var (
			u                            Unreturned
			owner, sub                   []byte
			depositID, amount, createdAt u64
		)
		if err := rows.Scan(&owner, &sub, &depositID, &amount, &u.Err, &createdAt); err != nil {
			return nil, err
		}
		u.Owner = pool.BytesToAddress(owner)
		u.Sub = pool.BytesToBytes32(sub)
		u.DepositID = uint64(depositID)
		u.Amount = uint64(amount)
		u.CreatedAt = uint64(createdAt)
		list = append(list, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}
