package session

// decision is the per-request state the end-of-response policy looks at.
type decision struct {
	id         string
	loadTimeID string
	hasSession bool
	modified   bool
	saved      bool
	hasSaved   bool
	hasExpiry  bool
}

type policy struct {
	rolling           bool
	saveUninitialized bool
	unsetDestroy      bool
}

func (p policy) shouldDestroy(d decision) bool {
	return d.id != "" && p.unsetDestroy && !d.hasSession
}

func (p policy) shouldSave(d decision) bool {
	if d.id == "" || !d.hasSession {
		return false
	}
	// Once saved during this request the stored copy must follow the data,
	// even back to its generated state.
	if !p.saveUninitialized && !d.hasSaved && d.loadTimeID != d.id {
		return d.modified
	}
	return !d.saved
}

func (p policy) shouldTouch(d decision) bool {
	if d.id == "" || !d.hasSession {
		return false
	}
	return d.loadTimeID == d.id && !p.shouldSave(d)
}

func (p policy) shouldSetCookie(d decision) bool {
	if d.id == "" || !d.hasSession {
		return false
	}
	if p.rolling {
		return true
	}
	if d.loadTimeID != d.id {
		return p.saveUninitialized || d.modified
	}
	return d.hasExpiry && d.modified
}
