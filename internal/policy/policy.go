// Package policy is the single access-control evaluator. Every view, route,
// modify, delete and sign decision in the system goes through here, so the
// tier rules live in exactly one place.
//
// Evaluator functions are pure: they decide over an actor, a process, its
// loaded ledger/grant state and optionally a document. They never touch a
// store and never return an error; callers translate a denial into
// CodePermissionDenied (or omit the item, on listing paths).
//
// Tier policy: Restricted and Confidential are both creator/grantee-only at
// list and detail time. The legacy behavior of treating Restricted as
// listable by everyone was dropped in favor of one consistent rule.
package policy

import (
	dirmodels "tramita/internal/directory/models"
	docmodels "tramita/internal/document/models"
	procmodels "tramita/internal/process/models"
)

// Decision is the outcome of one evaluator check. Reason is only set on
// denial, for diagnostics and logging; it is never shown raw to end users.
type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision             { return Decision{Allowed: true} }
func deny(reason string) Decision { return Decision{Reason: reason} }

// CanView decides detail visibility of a process for an actor.
//
// Public processes are visible to any authenticated actor. Restricted and
// confidential processes are visible only to the creator and explicit
// grant holders; no capability short-circuits this, not even admin, except
// through an explicit grant or authorship.
func CanView(actor *dirmodels.Collaborator, process *procmodels.Process, hasGrant bool) Decision {
	if actor == nil {
		return deny("no authenticated actor")
	}
	if process == nil {
		return deny("no such process")
	}
	if process.IsPublic() {
		return allow()
	}
	if process.Creator == actor.ID {
		return allow()
	}
	if hasGrant {
		return allow()
	}
	return deny("process is " + string(process.AccessTier) + " and actor is neither creator nor grantee")
}

// CanList decides whether a process appears in listings for an actor. Same
// rule as CanView: one consistent tier policy for list and detail.
func CanList(actor *dirmodels.Collaborator, process *procmodels.Process, hasGrant bool) Decision {
	return CanView(actor, process, hasGrant)
}

// CanListArchived decides whether archived processes appear in the actor's
// general listings.
func CanListArchived(actor *dirmodels.Collaborator) Decision {
	if actor == nil {
		return deny("no authenticated actor")
	}
	if actor.HasCapability(dirmodels.CapabilityViewArchived) {
		return allow()
	}
	return deny("actor lacks " + string(dirmodels.CapabilityViewArchived))
}

// CanRoute decides whether the actor may move the process between sectors.
func CanRoute(actor *dirmodels.Collaborator, process *procmodels.Process, hasGrant bool) Decision {
	if actor == nil {
		return deny("no authenticated actor")
	}
	if process == nil {
		return deny("no such process")
	}
	if process.Archived {
		return deny("process is archived")
	}
	if process.Creator == actor.ID || actor.HasCapability(dirmodels.CapabilityAdmin) || hasGrant {
		return allow()
	}
	return deny("actor is neither creator, admin nor grantee")
}

// CanArchive decides whether the actor may archive or reopen the process.
// Archiving is a custody action: creator, admin, or the document-control
// capability.
func CanArchive(actor *dirmodels.Collaborator, process *procmodels.Process) Decision {
	if actor == nil {
		return deny("no authenticated actor")
	}
	if process == nil {
		return deny("no such process")
	}
	if process.Creator == actor.ID || actor.HasCapability(dirmodels.CapabilityDocControl) {
		return allow()
	}
	return deny("actor is neither creator, admin nor document control")
}

// CanAddDocument decides whether the actor may attach a new document.
func CanAddDocument(actor *dirmodels.Collaborator, process *procmodels.Process, hasGrant bool) Decision {
	if d := CanView(actor, process, hasGrant); !d.Allowed {
		return d
	}
	if process.Archived {
		return deny("process is archived")
	}
	if process.Creator == actor.ID || actor.HasCapability(dirmodels.CapabilityAdmin) || hasGrant {
		return allow()
	}
	return deny("actor is neither creator, admin nor grantee")
}

// CanModifyDocument decides whether the actor may edit a document's content.
//
// Requires view rights, an unarchived process, and creator/admin/grantee
// standing. A signed document stays editable only while the process has
// never been routed beyond its creation movement; after the first real
// routing the signature locks the content permanently.
func CanModifyDocument(actor *dirmodels.Collaborator, process *procmodels.Process,
	document *docmodels.Document, hasGrant bool, ledger []*procmodels.Movement) Decision {

	if d := CanView(actor, process, hasGrant); !d.Allowed {
		return d
	}
	if process.Archived {
		return deny("process is archived")
	}
	if document == nil {
		return deny("no such document")
	}
	if !(process.Creator == actor.ID || actor.HasCapability(dirmodels.CapabilityAdmin) || hasGrant) {
		return deny("actor is neither creator, admin nor grantee")
	}
	if document.Signed() && !OnlyInitialMovement(ledger) {
		return deny("signed document is locked once the process has been routed")
	}
	return allow()
}

// CanDeleteDocument decides whether the actor may remove a document.
// Deletion is narrower than edit: a grant alone is insufficient.
func CanDeleteDocument(actor *dirmodels.Collaborator, process *procmodels.Process, hasGrant bool) Decision {
	if d := CanView(actor, process, hasGrant); !d.Allowed {
		return d
	}
	if process.Archived {
		return deny("process is archived")
	}
	if process.Creator == actor.ID || actor.HasCapability(dirmodels.CapabilityAdmin) {
		return allow()
	}
	return deny("only creator or admin may delete documents")
}

// CanSign decides whether the actor may apply a digital signature. The
// credential re-check happens in the document service; this only evaluates
// standing.
func CanSign(actor *dirmodels.Collaborator, process *procmodels.Process,
	document *docmodels.Document, hasGrant bool) Decision {

	if d := CanView(actor, process, hasGrant); !d.Allowed {
		return d
	}
	if process.Archived {
		return deny("process is archived")
	}
	if document == nil {
		return deny("no such document")
	}
	if document.Kind != docmodels.KindInternal {
		return deny("only internal documents can be signed")
	}
	if !actor.HasCapability(dirmodels.CapabilitySign) {
		return deny("actor lacks " + string(dirmodels.CapabilitySign))
	}
	return allow()
}

// OnlyInitialMovement reports whether the ledger still consists solely of
// the creation movement, meaning the process has never actually been routed.
func OnlyInitialMovement(ledger []*procmodels.Movement) bool {
	if len(ledger) != 1 {
		return false
	}
	return ledger[0].IsInitial()
}
