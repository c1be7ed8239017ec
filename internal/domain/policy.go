package domain

// Anonymous is the requester id of an unauthenticated caller.
const Anonymous = ""

// CanRead reports whether requesterID may fetch q by id. Published quizzes
// are visible to everyone, drafts only to their owner.
func CanRead(q Quiz, requesterID string) bool {
	if q.IsPublished {
		return true
	}
	return requesterID != Anonymous && requesterID == q.OwnerID
}

// CanWrite reports whether requesterID may update, publish or delete q.
func CanWrite(q Quiz, requesterID string) bool {
	return requesterID != Anonymous && requesterID == q.OwnerID
}

// AuthorizeRead returns ErrQuizNotFound for hidden quizzes so private drafts
// cannot be enumerated.
func AuthorizeRead(q Quiz, requesterID string) error {
	if !CanRead(q, requesterID) {
		return ErrQuizNotFound
	}
	return nil
}

// AuthorizeWrite checks identity before ownership.
func AuthorizeWrite(q Quiz, requesterID string) error {
	if requesterID == Anonymous {
		return ErrUnauthenticated
	}
	if !CanWrite(q, requesterID) {
		return ErrForbidden
	}
	return nil
}

// RequireIdentity guards operations scoped to the requester (create, "my quizzes").
func RequireIdentity(requesterID string) error {
	if requesterID == Anonymous {
		return ErrUnauthenticated
	}
	return nil
}

// Published keeps only quizzes for the discovery feed, preserving order.
func Published(quizzes []Quiz) []Quiz {
	out := make([]Quiz, 0, len(quizzes))
	for _, q := range quizzes {
		if q.IsPublished {
			out = append(out, q)
		}
	}
	return out
}

// OwnedBy keeps the quizzes authored by ownerID in any publication state.
func OwnedBy(quizzes []Quiz, ownerID string) []Quiz {
	out := make([]Quiz, 0, len(quizzes))
	for _, q := range quizzes {
		if q.OwnerID == ownerID {
			out = append(out, q)
		}
	}
	return out
}
