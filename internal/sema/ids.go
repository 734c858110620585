package sema

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/dekarrin/embrc/internal/source"
)

// idNamespace seeds every deterministic id this package mints. The teacher
// repo mints row ids with uuid.NewRandom() (server/dao/sqlite/*.go); here
// uuid.NewSHA1 is used instead against a fixed namespace, because compiler
// output must satisfy byte-identical determinism across runs on identical
// input (spec.md §8, P9) and a random id would break that on every build.
var idNamespace = uuid.MustParse("6f62e2ee-0b1f-4fa0-8c1a-9d6a9e8f2b10")

// slotID deterministically names the stack slot for a parameter or local
// declared at declSpan with the given name, scoped by source id so that two
// sources with identical spans never collide.
func slotID(sourceID string, span source.Span, name string) string {
	key := fmt.Sprintf("slot:%s:%d:%d:%s", sourceID, span.Start, span.End, name)
	return uuid.NewSHA1(idNamespace, []byte(key)).String()
}

// loopID deterministically names the loop a while-statement introduces, for
// break/continue resolution (spec.md §9, "opaque identifiers").
func loopID(sourceID string, span source.Span) string {
	key := fmt.Sprintf("loop:%s:%d:%d", sourceID, span.Start, span.End)
	return uuid.NewSHA1(idNamespace, []byte(key)).String()
}
