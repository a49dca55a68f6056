package client

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/eth2030/superlight/log"
	"github.com/eth2030/superlight/merkle"
	"github.com/eth2030/superlight/mmr"
	"github.com/eth2030/superlight/prover"
	"github.com/eth2030/superlight/types"
)

// ProverRecord tracks one prover's state across a Sync run: the audited
// MMR root and peaks, and — once adopted — the verified committee.
// Records are constructed after the initial audit and discarded as
// provers lose bisection games; nothing mutates a record's Root or
// Peaks once created (spec.md §3's ProverRecord lifecycle).
type ProverRecord struct {
	Index         int
	Prover        prover.Prover
	Root          types.Digest
	Peaks         []mmr.Peak
	SyncCommittee types.Committee

	// Report is purely observational bookkeeping over this record's
	// tournament participation — never consulted by Sync's control
	// flow, which decides everything through peaksVsPeaks/treeVsTree
	// return values instead.
	Report GameReport
}

// GameReport is a small audit trail of one prover's tournament
// activity: how many bisection games it played, how many it won, and
// the period of the last leaf a game found it disagreeing on.
type GameReport struct {
	GamesPlayed            int
	GamesWon               int
	LastDisagreementPeriod uint64
}

// Client orchestrates the prover audit, tournament, bisection game, and
// committee adoption (component C5).
type Client struct {
	cfg Config
	log *log.Logger
}

// New constructs a Client from cfg.
func New(cfg Config) *Client {
	return &Client{cfg: cfg, log: cfg.logger().Module("client")}
}

// Sync runs the full protocol and returns the adopted committee as a
// single-element ProverRecord slice. It fails only if every validly
// shaped prover is proven dishonest, or a protocol invariant is
// violated (spec.md §4.5, §7).
func (c *Client) Sync(ctx context.Context) ([]*ProverRecord, error) {
	n := int(c.cfg.N)
	genesisPeriod := c.cfg.Store.GetGenesisPeriod()
	currentPeriod := c.cfg.Store.GetCurrentPeriod()
	if currentPeriod < genesisPeriod {
		return nil, c.fatalf("current period %d precedes genesis period %d", currentPeriod, genesisPeriod)
	}
	mmrSize := currentPeriod - genesisPeriod + 1

	survivors := c.auditProvers(ctx, mmrSize, n)
	c.log.Info("mmr audit complete", "provers", len(c.cfg.Provers), "survivors", len(survivors))
	if len(survivors) == 0 {
		return nil, ErrAllProversDishonest
	}

	winners, err := c.runTournament(ctx, survivors)
	if err != nil {
		return nil, err
	}
	c.log.Info("tournament complete", "winners", len(winners))

	for _, rec := range winners {
		committee, ok := c.getVerifiedSyncCommittee(ctx, rec, prover.Latest, rec.Peaks)
		if !ok {
			c.log.Warn("winner failed final latest-committee audit", "prover", rec.Index)
			continue
		}
		rec.SyncCommittee = committee
		c.log.CommitteeAdopted(rec.Index)
		return []*ProverRecord{rec}, nil
	}
	return nil, ErrAllProversDishonest
}

// runTournament pairs the first survivor against every later one
// (spec.md §4.5.2), keeping a single winners pool of mutually identical
// MMR roots.
func (c *Client) runTournament(ctx context.Context, survivors []*ProverRecord) ([]*ProverRecord, error) {
	winners := []*ProverRecord{survivors[0]}
	for _, p := range survivors[1:] {
		if types.Eq(winners[0].Root, p.Root) {
			winners = append(winners, p)
			continue
		}
		winners[0].Report.GamesPlayed++
		p.Report.GamesPlayed++
		aHonest, err := c.peaksVsPeaks(ctx, winners[0], p)
		if err != nil {
			return nil, err
		}
		if aHonest {
			winners[0].Report.GamesWon++
			c.log.GameDecided(winners[0].Index, p.Index)
			continue
		}
		p.Report.GamesWon++
		c.log.GameDecided(p.Index, winners[0].Index)
		winners = []*ProverRecord{p}
	}
	return winners, nil
}

// auditProvers queries GetMMRInfo on every configured prover
// concurrently and keeps only those whose claimed peaks verify for
// mmrSize (spec.md §4.5.1, §5's "concurrency across provers is
// permitted during the MMR-audit phase").
func (c *Client) auditProvers(ctx context.Context, mmrSize uint64, n int) []*ProverRecord {
	records := make([]*ProverRecord, len(c.cfg.Provers))
	var g errgroup.Group
	for i, p := range c.cfg.Provers {
		i, p := i, p
		g.Go(func() error {
			info, err := callWithTimeout(ctx, c.cfg.RequestTimeout, func() (prover.MMRInfo, error) {
				return p.GetMMRInfo()
			})
			if err != nil {
				c.log.AuditRejected(p.Index(), err.Error())
				return nil
			}
			if !mmr.Verify(info.RootHash, info.Peaks, mmrSize, n) {
				c.log.AuditRejected(p.Index(), "peaks failed mmr verification")
				return nil
			}
			records[i] = &ProverRecord{Index: p.Index(), Prover: p, Root: info.RootHash, Peaks: info.Peaks}
			return nil
		})
	}
	_ = g.Wait() // every goroutine swallows its own error; Wait never fails

	survivors := make([]*ProverRecord, 0, len(records))
	for _, r := range records {
		if r != nil {
			survivors = append(survivors, r)
		}
	}
	return survivors
}

// getVerifiedSyncCommittee implements spec.md §4.5.6: fetch the leaf
// and its proof, locate the covering peak (or the rightmost peak's
// last leaf for prover.Latest), and verify the inclusion proof.
func (c *Client) getVerifiedSyncCommittee(ctx context.Context, rec *ProverRecord, period uint64, peaks []mmr.Peak) (types.Committee, bool) {
	lwp, err := callWithTimeout(ctx, c.cfg.RequestTimeout, func() (prover.LeafWithProof, error) {
		return rec.Prover.GetLeafWithProof(period)
	})
	if err != nil {
		return nil, false
	}

	var peak mmr.Peak
	var localIndex uint64
	if period == prover.Latest {
		if len(peaks) == 0 {
			return nil, false
		}
		peak = peaks[len(peaks)-1]
		localIndex = peak.Size - 1
	} else {
		p, li, _, ok := mmr.GetPeakAndIndex(peaks, period)
		if !ok {
			return nil, false
		}
		peak = p
		localIndex = li
	}

	if !lwp.RootHash.IsZero() && !types.Eq(lwp.RootHash, peak.RootHash) {
		return nil, false
	}

	leafHash := lwp.SyncCommittee.Root()
	if !merkle.Verify(leafHash, localIndex, peak.RootHash, lwp.Proof, int(c.cfg.N)) {
		return nil, false
	}
	return lwp.SyncCommittee, true
}

// callWithTimeout runs fn in its own goroutine and returns its result,
// unless ctx is cancelled or timeout elapses first — whichever comes
// first is reported as the call's failure, matching spec.md §5's "a
// timeout is equivalent to a malformed response" treatment. timeout <=
// 0 disables the timer (only ctx can still cut the call short).
func callWithTimeout[T any](ctx context.Context, timeout time.Duration, fn func() (T, error)) (T, error) {
	type result struct {
		v   T
		err error
	}
	ch := make(chan result, 1)
	go func() {
		v, err := fn()
		ch <- result{v, err}
	}()

	if timeout <= 0 {
		select {
		case r := <-ch:
			return r.v, r.err
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		}
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case r := <-ch:
		return r.v, r.err
	case <-timer.C:
		var zero T
		return zero, context.DeadlineExceeded
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
