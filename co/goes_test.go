// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package co

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGoes(t *testing.T) {
	var (
		goes Goes
		n    atomic.Int64
	)
	for i := range 10 {
		goes.Go(func() { n.Add(int64(i)) })
	}
	goes.Wait()
	assert.Equal(t, int64(45), n.Load())

	select {
	case <-goes.Done():
	default:
		<-goes.Done()
	}
}
