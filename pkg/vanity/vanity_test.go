package vanity

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ninja0404/lobsterpad/pkg/types"
)

func TestGenerateSuffixCaseInsensitive(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, suffix := range []string{"a", "Z", "pu", "X9"} {
		res, err := Generate(ctx, Options{Suffix: suffix, Workers: 4})
		if err != nil {
			t.Fatalf("suffix %q: %v", suffix, err)
		}
		addr := res.PublicKey.String()
		if !strings.HasSuffix(strings.ToLower(addr), strings.ToLower(suffix)) {
			t.Fatalf("address %s does not end with %q", addr, suffix)
		}
		if res.PrivateKey.PublicKey() != res.PublicKey {
			t.Fatalf("private key does not match public key for %s", addr)
		}
		if res.Attempts == 0 {
			t.Fatalf("attempts should be counted")
		}
	}
}

func TestGenerateCaseSensitive(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	res, err := Generate(ctx, Options{Suffix: "k", CaseSensitive: true})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.HasSuffix(res.PublicKey.String(), "k") {
		t.Fatalf("address %s does not end with k", res.PublicKey)
	}
}

func TestGenerateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var progressed atomic.Bool
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	// ten characters is far out of reach in 50ms
	_, err := Generate(ctx, Options{
		Suffix:     "zzzzzzzzzz",
		Workers:    2,
		OnProgress: func(uint64) { progressed.Store(true) },
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	t.Logf("progress reported: %v", progressed.Load())
}

func TestGenerateTimeout(t *testing.T) {
	_, err := Generate(context.Background(), Options{
		Suffix:  "zzzzzzzzzz",
		Timeout: 20 * time.Millisecond,
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestGenerateRejectsImpossiblePattern(t *testing.T) {
	_, err := Generate(context.Background(), Options{Suffix: "0x"})
	if !errors.Is(err, types.ErrInvalidPattern) {
		t.Fatalf("expected ErrInvalidPattern, got %v", err)
	}
	if _, err := Generate(context.Background(), Options{}); err == nil {
		t.Fatal("expected error for empty pattern")
	}
	// 'l' is not base58 but 'L' is, so it is fine without case sensitivity
	if err := ValidatePattern("lol", false); err != nil {
		t.Fatalf("lol should be searchable case-insensitively: %v", err)
	}
	if err := ValidatePattern("lol", true); err == nil {
		t.Fatal("lol should be rejected case-sensitively")
	}
}

func TestMatches(t *testing.T) {
	addr := "7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgINU"
	if !Matches(addr, "inu", false) {
		t.Error("case-insensitive suffix should match")
	}
	if Matches(addr, "inu", true) {
		t.Error("case-sensitive suffix should not match")
	}
	if Matches(addr, "pump", false) {
		t.Error("unrelated suffix should not match")
	}
}

func TestEstimateDifficulty(t *testing.T) {
	if got := EstimateDifficulty(0, 0); got != 1 {
		t.Errorf("empty pattern = %d", got)
	}
	if got := EstimateDifficulty(0, 3); got != 58*58*58 {
		t.Errorf("3 chars = %d", got)
	}
	if got := EstimateDifficulty(1, 3); got != 58*58*58*58 {
		t.Errorf("4 chars = %d", got)
	}
	if got := EstimateDifficulty(4, 6); got != 430804206899405824 {
		t.Errorf("10 chars = %d", got)
	}
	for _, n := range []int{11, 12, 44} {
		if got := EstimateDifficulty(0, n); got != math.MaxUint64 {
			t.Errorf("%d chars = %d, want saturation", n, got)
		}
	}
}
