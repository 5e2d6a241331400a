// Package ringtester drives a running ChordRing deployment with waves of
// concurrent insert/lookup traffic, for local or CI integration testing.
package ringtester

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	mathrand "math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"ChordRing/internal/bootstrap"
	"ChordRing/internal/logger"
	"ChordRing/internal/peerclient"
	"ChordRing/internal/ring"
	"ChordRing/internal/ringtester/writer"
)

// Tester runs timed waves of random key inserts/lookups against a
// discovered set of ring nodes.
type Tester struct {
	cfg    *Config
	logger logger.Logger
	writer writer.Writer
	boot   bootstrap.Bootstrap
	client *peerclient.Client
	runID  string
}

// New builds a Tester. Each instance is tagged with a fresh run ID so that
// rows from concurrent or repeated runs against the same CSV file can be
// told apart.
func New(cfg *Config, lgr logger.Logger, w writer.Writer, boot bootstrap.Bootstrap, space ring.Space) *Tester {
	return &Tester{
		cfg:    cfg,
		logger: lgr,
		writer: w,
		boot:   boot,
		client: peerclient.New(space, cfg.Query.Timeout, cfg.Query.Timeout, peerclient.WithLogger(lgr.Named("peerclient"))),
		runID:  uuid.NewString(),
	}
}

// Run fires query waves at the configured rate until duration elapses or
// ctx is canceled.
func (t *Tester) Run(ctx context.Context) error {
	t.logger.Info("tester started", logger.F("run_id", t.runID), logger.F("duration", t.cfg.Duration.String()))
	deadline := time.Now().Add(t.cfg.Duration)

	ticker := time.NewTicker(time.Duration(float64(time.Second) / t.cfg.Query.Rate))
	defer ticker.Stop()

	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := t.runQueryWave(ctx); err != nil {
				t.logger.Error("query wave failed", logger.F("err", err.Error()))
			}
		}
	}

	t.logger.Info("tester finished")
	return t.writer.Flush()
}

func (t *Tester) runQueryWave(ctx context.Context) error {
	nodes, err := t.boot.Discover(ctx)
	if err != nil {
		return fmt.Errorf("discover peers: %w", err)
	}
	if len(nodes) == 0 {
		t.logger.Warn("no nodes discovered")
		return nil
	}

	workers := randomInt(t.cfg.Query.Parallelism.MinWorkers, t.cfg.Query.Parallelism.MaxWorkers)
	t.logger.Debug("starting query wave", logger.F("workers", workers), logger.F("nodes", len(nodes)))

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			select {
			case <-ctx.Done():
			default:
				t.doRoundtrip(ctx, nodes)
			}
		}()
	}
	wg.Wait()
	return nil
}

// doRoundtrip inserts a random key on one random node, then confirms it's
// reachable via Contains on another random node (exercising both the
// owner-forwarding and the replica-read path).
func (t *Tester) doRoundtrip(ctx context.Context, nodes []string) {
	insertNode := nodes[mathrand.Intn(len(nodes))]
	lookupNode := nodes[mathrand.Intn(len(nodes))]
	key, err := randomKey()
	if err != nil {
		t.logger.Warn("failed to generate random key", logger.F("err", err.Error()))
		return
	}

	reqCtx, cancel := context.WithTimeout(ctx, t.cfg.Query.Timeout)
	start := time.Now()
	_, err = t.client.InsertKey(reqCtx, insertNode, key)
	cancel()
	if err != nil {
		t.record(insertNode, key, "INSERT_ERROR: "+err.Error(), time.Since(start))
		return
	}
	t.record(insertNode, key, "INSERT_OK", time.Since(start))

	reqCtx, cancel = context.WithTimeout(ctx, t.cfg.Query.Timeout)
	start = time.Now()
	found, err := t.client.ContainsKey(reqCtx, lookupNode, key)
	cancel()
	result := "CONTAINS_OK"
	switch {
	case err != nil:
		result = "CONTAINS_ERROR: " + err.Error()
	case !found:
		result = "CONTAINS_NOT_FOUND"
	}
	t.record(lookupNode, key, result, time.Since(start))
}

func (t *Tester) record(node, key, result string, delay time.Duration) {
	t.logger.Info("query result",
		logger.F("run_id", t.runID),
		logger.FAddr("node", node),
		logger.F("key", key),
		logger.F("result", result),
		logger.F("delay_ms", delay.Milliseconds()),
	)
	if err := t.writer.WriteRow(t.runID, node, result, delay); err != nil {
		t.logger.Warn("failed to write result row", logger.F("err", err.Error()))
	}
}

func randomInt(min, max int) int {
	if min >= max {
		return min
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(max-min+1)))
	if err != nil {
		return min
	}
	return min + int(n.Int64())
}

func randomKey() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
