package ruleerrors

import (
	"errors"
	"testing"
)

func TestRuleErrorWrap(t *testing.T) {
	inner := errors.New("confirmation height is 100, requested rollback of block at height 50")
	outer := ErrRollbackBelowConfirmationHeight.Wrap(inner)

	expected := "ErrRollbackBelowConfirmationHeight: " + inner.Error()
	if outer.Error() != expected {
		t.Fatalf("expected %q, found %q", expected, outer.Error())
	}

	var rule RuleError
	if !errors.As(outer, &rule) {
		t.Fatal("expected outer to unwrap into a RuleError")
	}
	if rule.message != "ErrRollbackBelowConfirmationHeight" {
		t.Fatalf("expected message ErrRollbackBelowConfirmationHeight, found %q", rule.message)
	}
	if !errors.Is(rule.Cause(), inner) {
		t.Fatal("expected rule.Cause() to be the wrapped inner error")
	}
}

func TestRuleErrorWithoutInner(t *testing.T) {
	if ErrUnknownBlockType.Error() != "ErrUnknownBlockType" {
		t.Fatalf("expected bare message, found %q", ErrUnknownBlockType.Error())
	}
	if ErrUnknownBlockType.Unwrap() != nil {
		t.Fatal("expected Unwrap of a bare RuleError to be nil")
	}
}
