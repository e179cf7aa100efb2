package chi

import (
	"encoding/gob"
	"net/http"

	"github.com/go-chi/httplog"
	"github.com/gorilla/sessions"
)

const sessionName = "book-manager"

const (
	flashSuccess = "success"
	flashDanger  = "danger"
)

// flash is a one-shot notification shown on the next rendered page
type flash struct {
	Category string
	Message  string
}

func init() {
	gob.Register(flash{})
}

type flasher struct {
	store sessions.Store
}

func newFlasher(store sessions.Store) *flasher {
	return &flasher{store: store}
}

// add queues a notification; failing to save it never fails the request
func (f *flasher) add(w http.ResponseWriter, r *http.Request, category, message string) {
	// Get hands back a fresh session when the cookie cannot be decoded
	s, _ := f.store.Get(r, sessionName)
	s.AddFlash(flash{Category: category, Message: message})
	if err := s.Save(r, w); err != nil {
		log := httplog.LogEntry(r.Context())
		log.Warn().Err(err).Msg("saving flash message")
	}
}

// pop returns and clears the queued notifications
func (f *flasher) pop(w http.ResponseWriter, r *http.Request) []flash {
	s, _ := f.store.Get(r, sessionName)
	raw := s.Flashes()
	if len(raw) == 0 {
		return nil
	}
	if err := s.Save(r, w); err != nil {
		log := httplog.LogEntry(r.Context())
		log.Warn().Err(err).Msg("clearing flash messages")
	}
	result := make([]flash, 0, len(raw))
	for _, v := range raw {
		if fl, ok := v.(flash); ok {
			result = append(result, fl)
		}
	}
	return result
}

// redirect queues a notification and sends the client to location
func (f *flasher) redirect(w http.ResponseWriter, r *http.Request, location, category, message string) {
	f.add(w, r, category, message)
	http.Redirect(w, r, location, http.StatusSeeOther)
}
