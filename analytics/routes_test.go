package analytics

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/ritego/challenge-analytics-router/router"
)

const (
	challengePK = 7
	phasePK     = 3
)

func TestAnalyticsURLs(t *testing.T) {
	Convey("Given the analytics table", t, func() {
		table, err := New(NotImplemented())
		So(err, ShouldBeNil)

		check := func(name string, params map[string]any, want string) {
			p, err := table.Reverse("analytics:"+name, params)
			So(err, ShouldBeNil)
			So(p, ShouldEqual, want)

			m, err := table.Resolve(p)
			So(err, ShouldBeNil)
			So(m.ViewName(), ShouldEqual, "analytics:"+name)
		}

		Convey("participant team count", func() {
			check(RouteParticipantTeamCount,
				map[string]any{ParamChallenge: challengePK},
				"/api/analytics/challenge/7/team/count")
		})

		Convey("participant count", func() {
			check(RouteParticipantCount,
				map[string]any{ParamChallenge: challengePK},
				"/api/analytics/challenge/7/participant/count")
		})

		Convey("submission count for every duration", func() {
			for _, d := range []Duration{Daily, Weekly, Monthly, All} {
				check(RouteSubmissionCount,
					map[string]any{ParamChallenge: challengePK, ParamDuration: string(d)},
					fmt.Sprintf("/api/analytics/challenge/7/submission/%s/count", d))
			}
		})

		Convey("last submission time for every grouping", func() {
			for _, by := range []SubmissionBy{ByChallenge, ByChallengePhase, ByParticipantTeam, ByUser} {
				check(RouteLastSubmissionTime,
					map[string]any{ParamChallenge: challengePK, ParamChallengePhase: phasePK, ParamSubmissionBy: string(by)},
					fmt.Sprintf("/api/analytics/challenge/7/challenge_phase/3/last_submission/%s", by))
			}
		})

		Convey("last submission time resolves to typed params", func() {
			m, err := table.Resolve("/api/analytics/challenge/7/challenge_phase/3/last_submission/user")
			So(err, ShouldBeNil)
			So(m.Route.Name, ShouldEqual, RouteLastSubmissionTime)
			So(m.Params, ShouldResemble, router.Params{ParamChallenge: 7, ParamChallengePhase: 3, ParamSubmissionBy: "user"})
		})

		Convey("a non-numeric challenge is a validation error", func() {
			_, err := table.Resolve("/api/analytics/challenge/abc/team/count")
			So(errors.Is(err, router.ErrInvalidParameter), ShouldBeTrue)
		})

		Convey("an unknown path is not found", func() {
			_, err := table.Resolve("/api/analytics/unknown/path")
			So(errors.Is(err, router.ErrNotFound), ShouldBeTrue)
		})

		Convey("trailing slashes are not accepted", func() {
			_, err := table.Resolve("/api/analytics/challenge/7/participant/count/")
			So(errors.Is(err, router.ErrNotFound), ShouldBeTrue)
		})

		Convey("the routing layer accepts any alphabetic duration", func() {
			m, err := table.Resolve("/api/analytics/challenge/7/submission/yearly/count")
			So(err, ShouldBeNil)
			So(m.Route.Name, ShouldEqual, RouteSubmissionCount)
		})
	})

	Convey("Options override the default mount point", t, func() {
		table, err := New(NotImplemented(), router.WithPrefix("/v2/stats"))
		So(err, ShouldBeNil)
		So(table.Prefix(), ShouldEqual, "/v2/stats/")
		So(table.Namespace(), ShouldEqual, Namespace)
	})

	Convey("Missing handlers are a registration error", t, func() {
		h := NotImplemented()
		h.ParticipantCount = nil
		_, err := New(h)
		So(errors.Is(err, router.ErrNilHandler), ShouldBeTrue)
	})
}

func TestNotImplemented(t *testing.T) {
	Convey("Placeholder views", t, func() {
		table, err := New(NotImplemented())
		So(err, ShouldBeNil)

		serve := func(path string) *httptest.ResponseRecorder {
			rec := httptest.NewRecorder()
			table.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
			return rec
		}

		Convey("answer 501 naming the view", func() {
			rec := serve("/api/analytics/challenge/7/submission/weekly/count")
			So(rec.Code, ShouldEqual, http.StatusNotImplemented)

			var body struct {
				View   string         `json:"view"`
				Params map[string]any `json:"params"`
			}
			So(json.Unmarshal(rec.Body.Bytes(), &body), ShouldBeNil)
			So(body.View, ShouldEqual, "analytics:get_submission_count")
			So(body.Params["duration"], ShouldEqual, "weekly")
			So(body.Params["challenge_pk"], ShouldEqual, float64(7))
		})

		Convey("reject unknown durations and groupings", func() {
			So(serve("/api/analytics/challenge/7/submission/yearly/count").Code, ShouldEqual, http.StatusBadRequest)
			So(serve("/api/analytics/challenge/7/challenge_phase/3/last_submission/host_team").Code, ShouldEqual, http.StatusBadRequest)
			So(serve("/api/analytics/challenge/7/challenge_phase/3/last_submission/participant_team").Code, ShouldEqual, http.StatusNotImplemented)
		})
	})
}
