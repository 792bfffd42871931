package analytics

import (
	"encoding/json"
	"net/http"

	"github.com/ritego/challenge-analytics-router/router"
)

// Duration is the window a submission count covers.
type Duration string

const (
	Daily   Duration = "daily"
	Weekly  Duration = "weekly"
	Monthly Duration = "monthly"
	All     Duration = "all"
)

func (d Duration) Valid() bool {
	switch d {
	case Daily, Weekly, Monthly, All:
		return true
	}
	return false
}

// SubmissionBy is the grouping for the last submission time.
type SubmissionBy string

const (
	ByChallenge       SubmissionBy = "challenge"
	ByChallengePhase  SubmissionBy = "challenge_phase"
	ByParticipantTeam SubmissionBy = "participant_team"
	ByUser            SubmissionBy = "user"
)

func (s SubmissionBy) Valid() bool {
	switch s {
	case ByChallenge, ByChallengePhase, ByParticipantTeam, ByUser:
		return true
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// notImplemented answers 501 naming the view and echoing its params.
func notImplemented(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{"error": "not implemented"}
	if m, ok := router.MatchFrom(r.Context()); ok {
		body["view"] = m.ViewName()
		body["params"] = m.Params
	}
	writeJSON(w, http.StatusNotImplemented, body)
}

// NotImplemented returns placeholder views. They reject durations and
// groupings the analytics API does not know with 400, as the real views do,
// and answer 501 otherwise.
func NotImplemented() Handlers {
	stub := http.HandlerFunc(notImplemented)
	return Handlers{
		ParticipantTeamCount: stub,
		ParticipantCount:     stub,
		SubmissionCount: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d, _ := router.ParamsFrom(r).String(ParamDuration)
			if !Duration(d).Valid() {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Wrong URL pattern!"})
				return
			}
			notImplemented(w, r)
		}),
		LastSubmissionTime: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			by, _ := router.ParamsFrom(r).String(ParamSubmissionBy)
			if !SubmissionBy(by).Valid() {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Wrong URL pattern!"})
				return
			}
			notImplemented(w, r)
		}),
	}
}
