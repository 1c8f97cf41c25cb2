// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"gopkg.in/cheggaaa/pb.v1"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/stakepool/kv"
	"github.com/vechain/stakepool/staker"
)

func verifyAction(ctx *cli.Context) error {
	if _, err := initLogger(ctx); err != nil {
		return err
	}
	dataDir, err := makeDataDir(ctx)
	if err != nil {
		return err
	}
	store, err := openStore(ctx, dataDir, true)
	if err != nil {
		return err
	}
	defer store.Close()

	report, err := verifyStore(store, true)
	if err != nil {
		return err
	}
	printReport(os.Stdout, report)
	if stats, err := store.Stats(); err != nil {
		logger.Warn("failed to read store stats", "err", err)
	} else {
		fmt.Printf("    Store          [ %v in %d tables ]\n", common.StorageSize(stats.Size), stats.Tables)
	}
	if !report.OK() {
		return fmt.Errorf("%d broken accounts", len(report.Mismatches))
	}
	return nil
}

// verifyStore checks the store offline, no transfer is ever made.
func verifyStore(store kv.Store, showProgress bool) (*staker.Report, error) {
	s, err := staker.New(store, nil, staker.Options{})
	if err != nil {
		return nil, errors.Wrap(err, "init staker")
	}

	var bar *pb.ProgressBar
	defer func() {
		if bar != nil {
			bar.Finish()
		}
	}()

	return s.Verify(func(done, total int) {
		if !showProgress {
			return
		}
		if bar == nil {
			fmt.Println(">> Verifying stakes <<")
			bar = pb.New(total).SetMaxWidth(90).Start()
		}
		bar.Set(done)
	})
}

func printReport(w io.Writer, r *staker.Report) {
	fmt.Fprintf(w, `    Accounts       [ %v ]
    Deposits       [ %v ]
    Total stake    [ %v ]
    Last deposit   [ %v ]
`,
		r.Accounts, r.Deposits, r.TotalStake.Dec(), r.LastDepositID)

	for _, m := range r.Mismatches {
		sum := "-"
		if m.DepositSum != nil {
			sum = m.DepositSum.Dec()
		}
		fmt.Fprintf(w, "    %v: %v (balance %v, deposits %v)\n", m.Key, m.Reason, m.Balance, sum)
	}
	if r.OK() {
		fmt.Fprintln(w, "    OK")
	}
}
