// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package resolver canonicalizes vote targets.

Clients historically send a single option_ref that means one of two things:

  - a reserved semantic key code (ReservedKeyMin..ReservedKeyMax) applying to
    the requested subject, or
  - a global option id, which already names its owning subject.

Resolve applies that rule deterministically:

	target, err := r.Resolve(ctx, subjectID, optionRef)

Errors:

  - models.ErrInvalidOptionRef: optionRef <= 0
  - models.ErrOptionNotAvailableForSubject: reserved code with no matching option
  - models.ErrOptionNotFound: no option with that id
  - models.ErrSubjectOptionMismatch: the option belongs to another subject

Newer clients send semantic_key and option_id as separate fields, which
ResolveExplicit handles without the range rule. Callers must use the
returned Target downstream, never the raw reference.
*/
package resolver
