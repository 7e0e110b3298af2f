package limiter

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

/************ fake pgx ************/
type fakeRow struct{ scan func(dest ...any) error }

func (r fakeRow) Scan(dest ...any) error { return r.scan(dest...) }

type fakePool struct {
	qrErr        error
	hits         int64
	windowStart  time.Time
	blockedUntil time.Time

	lastArgs    []any
	lastExecSQL string
	execArgs    []any
	execErr     error
}

func (f *fakePool) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.lastExecSQL = sql
	f.execArgs = args
	return pgconn.CommandTag{}, f.execErr
}

func (f *fakePool) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	f.lastArgs = args
	if !strings.Contains(sql, "RETURNING hits, window_start, blocked_until") {
		return fakeRow{scan: func(dest ...any) error { return errors.New("unexpected query") }}
	}
	return fakeRow{scan: func(dest ...any) error {
		if f.qrErr != nil {
			return f.qrErr
		}
		*(dest[0].(*int64)) = f.hits
		*(dest[1].(*time.Time)) = f.windowStart
		*(dest[2].(*time.Time)) = f.blockedUntil
		return nil
	}}
}

var (
	testNow    = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	testPolicy = Policy{Window: time.Minute, Max: 5, BlockAfter: 20, BlockFor: 15 * time.Minute}
)

func newTestPG(fp *fakePool) *PG {
	l := NewPGWithQuerier(fp, testPolicy)
	l.now = func() time.Time { return testNow }
	return l
}

func TestPGProtect_UnderQuota_Allows(t *testing.T) {
	fp := &fakePool{hits: 1, windowStart: testNow.Add(-10 * time.Second)}
	l := newTestPG(fp)

	d, err := l.Protect(context.Background(), "k", 1)
	if err != nil || !d.Allowed || d.Remaining != 4 || d.Reset != 50*time.Second {
		t.Fatalf("want allowed remaining=4 reset=50s, got %+v err=%v", d, err)
	}
	if fp.lastArgs[0] != "k" || fp.lastArgs[1] != int64(1) || fp.lastArgs[2] != time.Minute {
		t.Fatalf("unexpected args: %v", fp.lastArgs)
	}
}

func TestPGProtect_OverQuota_RateLimit(t *testing.T) {
	fp := &fakePool{hits: 6, windowStart: testNow.Add(-30 * time.Second)}
	l := newTestPG(fp)

	d, err := l.Protect(context.Background(), "k", 1)
	if err != nil || d.Allowed || d.Reason != ReasonRateLimit || d.Remaining != 0 || d.Reset != 30*time.Second {
		t.Fatalf("want rate-limit deny, got %+v err=%v", d, err)
	}
	if fp.lastExecSQL != "" {
		t.Fatalf("must not block below BlockAfter, exec=%s", fp.lastExecSQL)
	}
}

func TestPGProtect_Blocked_Other(t *testing.T) {
	fp := &fakePool{hits: 1, windowStart: testNow, blockedUntil: testNow.Add(5 * time.Minute)}
	l := newTestPG(fp)

	d, err := l.Protect(context.Background(), "k", 1)
	if err != nil || d.Allowed || d.Reason != ReasonOther || d.Reset != 5*time.Minute {
		t.Fatalf("want other-deny, got %+v err=%v", d, err)
	}
}

func TestPGProtect_Abuse_SetsBlock(t *testing.T) {
	fp := &fakePool{hits: 20, windowStart: testNow}
	l := newTestPG(fp)

	d, err := l.Protect(context.Background(), "k", 1)
	if err != nil || d.Allowed || d.Reason != ReasonOther || d.Reset != 15*time.Minute {
		t.Fatalf("want block, got %+v err=%v", d, err)
	}
	if !strings.Contains(fp.lastExecSQL, "UPDATE rate_limits SET blocked_until") {
		t.Fatalf("must update blocked_until, exec=%s", fp.lastExecSQL)
	}
	if got := fp.execArgs[1].(time.Time); !got.Equal(testNow.Add(15 * time.Minute)) {
		t.Fatalf("want block until now+15m, got %v", got)
	}
}

func TestPGProtect_BlockExecError(t *testing.T) {
	fp := &fakePool{hits: 25, windowStart: testNow, execErr: errors.New("exec fail")}
	l := newTestPG(fp)

	if _, err := l.Protect(context.Background(), "k", 1); err == nil {
		t.Fatalf("want exec error")
	}
}

func TestPGProtect_DBError_Propagates(t *testing.T) {
	fp := &fakePool{qrErr: errors.New("db boom")}
	l := newTestPG(fp)

	d, err := l.Protect(context.Background(), "k", 1)
	if err == nil || d.Allowed {
		t.Fatalf("want error propagate, got %+v err=%v", d, err)
	}
}

func TestHashKey_Determinism(t *testing.T) {
	a := HashKey("user_2abc")
	b := HashKey("user_2abc")
	c := HashKey("user_other")
	if a != b || a == c || len(a) != 64 {
		t.Fatalf("hash mismatch/len: %d", len(a))
	}
}

func TestPolicy_BlockDisabledWhenNotAboveMax(t *testing.T) {
	p := Policy{Window: time.Minute, Max: 5, BlockAfter: 5}
	if p.blocks(100) {
		t.Fatalf("BlockAfter <= Max must disable blocking")
	}
}
