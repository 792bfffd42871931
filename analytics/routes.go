// Package analytics declares the route table of the challenge analytics API.
package analytics

import (
	"net/http"

	"github.com/ritego/challenge-analytics-router/router"
)

const (
	// Prefix is where the analytics API is mounted.
	Prefix = "/api/analytics/"
	// Namespace qualifies view names, e.g. "analytics:get_participant_count".
	Namespace = "analytics"
)

const (
	RouteParticipantTeamCount = "get_participant_team_count"
	RouteParticipantCount     = "get_participant_count"
	RouteSubmissionCount      = "get_submission_count"
	RouteLastSubmissionTime   = "get_last_submission_time"
)

const (
	ParamChallenge      = "challenge_pk"
	ParamChallengePhase = "challenge_phase_pk"
	ParamDuration       = "duration"
	ParamSubmissionBy   = "submission_by"
)

// Handlers holds the view for each analytics route.
type Handlers struct {
	ParticipantTeamCount http.Handler
	ParticipantCount     http.Handler
	SubmissionCount      http.Handler
	LastSubmissionTime   http.Handler
}

// Routes returns the analytics routes in matching order.
func Routes(h Handlers) []router.Route {
	return []router.Route{
		{
			Name:    RouteParticipantTeamCount,
			Pattern: "challenge/{challenge_pk}/team/count",
			Params:  map[string]router.Schema{ParamChallenge: router.Int()},
			Handler: h.ParticipantTeamCount,
		},
		{
			Name:    RouteParticipantCount,
			Pattern: "challenge/{challenge_pk}/participant/count",
			Params:  map[string]router.Schema{ParamChallenge: router.Int()},
			Handler: h.ParticipantCount,
		},
		{
			Name:    RouteSubmissionCount,
			Pattern: "challenge/{challenge_pk}/submission/{duration}/count",
			Params: map[string]router.Schema{
				ParamChallenge: router.Int(),
				ParamDuration:  router.Alpha(),
			},
			Handler: h.SubmissionCount,
		},
		{
			Name:    RouteLastSubmissionTime,
			Pattern: "challenge/{challenge_pk}/challenge_phase/{challenge_phase_pk}/last_submission/{submission_by}",
			Params: map[string]router.Schema{
				ParamChallenge:      router.Int(),
				ParamChallengePhase: router.Int(),
				ParamSubmissionBy:   router.Word(),
			},
			Handler: h.LastSubmissionTime,
		},
	}
}

// New builds the analytics table mounted at Prefix under Namespace. Later
// options override those defaults.
func New(h Handlers, opts ...router.Option) (*router.Router, error) {
	opts = append([]router.Option{router.WithPrefix(Prefix), router.WithNamespace(Namespace)}, opts...)
	return router.New(Routes(h), opts...)
}
