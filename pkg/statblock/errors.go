package statblock

import (
	"github.com/obsidian-metrics/statblock/pkg/lifecycle"
	"github.com/obsidian-metrics/statblock/pkg/shmem"
)

// ErrRegionAttach and ErrRegionFull are re-exported here as the Facade's
// public error taxonomy (spec §7's ERegionAttach / ERegionFull). Neither is
// ever returned from a Facade method directly — by design, every error is
// absorbed into a null Handle or a zero return — but both are exposed for
// callers that inspect logs or want to assert on the cause in tests.
// ENullHandle is deliberately absent: the spec treats a null handle as an
// identity no-op, not an error value.
var (
	ErrRegionAttach = lifecycle.ErrRegionAttach
	ErrRegionFull   = shmem.ErrRegionFull
)
