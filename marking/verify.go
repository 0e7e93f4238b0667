package marking

import (
	"errors"
	"fmt"

	"github.com/Likeheart7/jdk12u/oop"
)

// Verifier re-walks the outgoing edges of already marked objects to
// confirm the pass would discover the same set again. A mismatch means
// the bitmap, chunking or preservation logic broke the mark-once
// invariant: it is a programming error, reported and fatal under asserts.
type Verifier struct {
	model  Model
	bitmap Bitmap
}

// NewVerifier returns a verifier over the pass's model and bitmap.
func NewVerifier(model Model, bitmap Bitmap) *Verifier {
	return &Verifier{model: model, bitmap: bitmap}
}

// Verify checks every marked object among refs. Unmarked objects are
// skipped: being unreachable is not a verification failure.
func (v *Verifier) Verify(refs []oop.Ref) error {
	var errs []error
	for _, r := range refs {
		if !v.bitmap.IsMarked(r) {
			continue
		}
		if err := v.VerifyObject(r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// VerifyObject checks that every edge out of one marked object leads to a
// marked or closed-archive object.
func (v *Verifier) VerifyObject(obj oop.Ref) error {
	if !v.bitmap.IsMarked(obj) {
		return fmt.Errorf("gc: verify: object %#x is not marked", uint64(obj))
	}
	var errs []error
	check := func(s oop.Slot) {
		target := s.Load()
		if target.IsNil() || v.bitmap.IsMarked(target) || v.model.IsClosedArchive(target) {
			return
		}
		errs = append(errs, fmt.Errorf("gc: verify: %#x reaches unmarked %#x", uint64(obj), uint64(target)))
	}
	if k := v.model.KlassOf(obj); k != nil && k.Loader != nil {
		holder := k.Loader.Holder
		check(oop.RefSlot{P: &holder})
	}
	if v.model.IsArray(obj) {
		v.model.IterateArrayRange(obj, 0, v.model.ArrayLen(obj), check)
	} else {
		v.model.IterateFields(obj, check)
	}
	return errors.Join(errs...)
}
