package validate

// Outcome is the result of one validation pass. An accepted outcome may
// still carry a note for the processing trail, e.g. when no person was
// detected but the image is plausibly a real photo.
type Outcome struct {
	Accepted bool
	Note     string
	Reason   Reason
	Detail   string
}

func accept() Outcome {
	return Outcome{Accepted: true}
}

func acceptWithNote(note string) Outcome {
	return Outcome{Accepted: true, Note: note}
}

func reject(reason Reason, detail string) Outcome {
	return Outcome{Reason: reason, Detail: detail}
}

// Rejection carries a failed outcome across package boundaries as an error.
// The REST layer maps it onto the response envelope.
type Rejection struct {
	Reason Reason
	Detail string
}

func (r *Rejection) Error() string {
	return r.Detail
}

// Err converts a rejected outcome into a *Rejection, or nil when accepted.
func (o Outcome) Err() error {
	if o.Accepted {
		return nil
	}

	return &Rejection{Reason: o.Reason, Detail: o.Detail}
}
