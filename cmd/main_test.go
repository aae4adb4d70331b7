package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/prioritise/internal/config"
	"github.com/okian/prioritise/internal/domain/model"
	"github.com/okian/prioritise/internal/domain/types"
	"github.com/okian/prioritise/pkg/logger"
)

const cohortCSV = `id,name,Total Portfolio AUA,TotalFees,LoginsL12M,MeetingsL12M
c1,Ann,650000,12000,20,6
c2,Bob,30000,1500,0,0
c3,Cy,400000,7500,180,5
c4,Di,n/a,,,
`

func writeCohort(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clients.csv")
	if err := os.WriteFile(path, []byte(cohortCSV), 0o600); err != nil {
		t.Fatalf("write cohort: %v", err)
	}
	return path
}

func run(args ...string) (string, error) {
	_ = os.Unsetenv(config.EnvConfigFile)
	defer func() { _ = os.Unsetenv(config.EnvConfigFile) }()

	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := execute(context.Background(), root)
	return out.String(), err
}

func TestScoreCommand(t *testing.T) {
	convey.Convey("Given a CSV cohort", t, func() {
		path := writeCohort(t)

		convey.Convey("When the top clients are requested", func() {
			out, err := run("score", "--kind", "csv", "--source", path, "-n", "2")

			convey.Convey("Then the highest scores are printed in order", func() {
				convey.So(err, convey.ShouldBeNil)
				var entries []types.Entry
				convey.So(json.Unmarshal([]byte(out), &entries), convey.ShouldBeNil)
				convey.So(len(entries), convey.ShouldEqual, 2)
				convey.So(entries[0].ClientID, convey.ShouldEqual, "c1")
				convey.So(entries[0].Score, convey.ShouldEqual, 82.31)
				convey.So(entries[1].ClientID, convey.ShouldEqual, "c3")
				convey.So(entries[1].Tier, convey.ShouldEqual, model.TierHigh)
			})
		})

		convey.Convey("When one client is requested", func() {
			out, err := run("score", "--kind", "csv", "--source", path, "--id", "c2")

			convey.Convey("Then its detail is printed", func() {
				convey.So(err, convey.ShouldBeNil)
				var d types.ClientDetail
				convey.So(json.Unmarshal([]byte(out), &d), convey.ShouldBeNil)
				convey.So(d.Priority.Score, convey.ShouldEqual, 10.0)
				convey.So(d.Rankings.TotalClients, convey.ShouldEqual, 4)
				convey.So(len(d.Explanation.Factors), convey.ShouldEqual, 3)
			})
		})

		convey.Convey("When an unknown client is requested", func() {
			_, err := run("score", "--kind", "csv", "--source", path, "--id", "zz")
			convey.So(err, convey.ShouldNotBeNil)
		})

		convey.Convey("When the limit is not positive", func() {
			_, err := run("score", "--kind", "csv", "--source", path, "-n", "0")
			convey.So(err, convey.ShouldNotBeNil)
		})
	})

	convey.Convey("Given a CSV row whose metrics overflow float64", t, func() {
		path := filepath.Join(t.TempDir(), "huge.csv")
		rows := "id,Total Portfolio AUA,TotalFees,LoginsL12M,MeetingsL12M\nbig,1e400,1e400,20,6\n"
		convey.So(os.WriteFile(path, []byte(rows), 0o600), convey.ShouldBeNil)

		out, err := run("score", "--kind", "csv", "--source", path, "--id", "big")

		convey.Convey("Then the detail still prints as valid JSON", func() {
			convey.So(err, convey.ShouldBeNil)
			var d types.ClientDetail
			convey.So(json.Unmarshal([]byte(out), &d), convey.ShouldBeNil)
			convey.So(d.Client.AUA, convey.ShouldEqual, 0.0)
			convey.So(d.Client.Fees, convey.ShouldEqual, 0.0)
			convey.So(d.Priority.Breakdown.AUA, convey.ShouldEqual, 0.0)
		})
	})
}

func TestStatsCommand(t *testing.T) {
	convey.Convey("Given a CSV cohort", t, func() {
		path := writeCohort(t)

		out, err := run("stats", "--kind", "csv", "--source", path)

		convey.Convey("Then tier counts and the mean are printed", func() {
			convey.So(err, convey.ShouldBeNil)
			var st model.Statistics
			convey.So(json.Unmarshal([]byte(out), &st), convey.ShouldBeNil)
			convey.So(st.Total, convey.ShouldEqual, 4)
			convey.So(st.High, convey.ShouldEqual, 2)
			convey.So(st.Low, convey.ShouldEqual, 2)
			// (82.31 + 10 + 75 + 0) / 4 = 41.8275
			convey.So(st.AverageScore, convey.ShouldEqual, 41.83)
		})
	})

	convey.Convey("Given a config file naming the source", t, func() {
		path := writeCohort(t)
		cfgPath := filepath.Join(t.TempDir(), "prio.yaml")
		yaml := "source_kind: csv\nsource_path: " + path + "\nlog_level: warn\n"
		convey.So(os.WriteFile(cfgPath, []byte(yaml), 0o600), convey.ShouldBeNil)

		out, err := run("stats", "--config", cfgPath)
		convey.So(err, convey.ShouldBeNil)
		convey.So(out, convey.ShouldContainSubstring, `"total": 4`)
	})

	convey.Convey("Given a missing source", t, func() {
		_, err := run("stats", "--kind", "csv", "--source", filepath.Join(t.TempDir(), "none.csv"))
		convey.So(err, convey.ShouldNotBeNil)
	})

	convey.Convey("Given an unknown source kind", t, func() {
		_, err := run("stats", "--kind", "mongo", "--source", "x")
		convey.So(err, convey.ShouldNotBeNil)
	})
}

func TestServeHandler(t *testing.T) {
	convey.Convey("Given the serve wiring over a CSV cohort", t, func() {
		convey.So(logger.Init(logger.WithWriter(&bytes.Buffer{})), convey.ShouldBeNil)
		cfg := config.New()
		cfg.SourceKind = config.SourceCSV
		cfg.SourcePath = writeCohort(t)
		cfg.MaxListLimit = 3

		ctx := context.Background()
		svc, err := newService(cfg, logger.Get())
		convey.So(err, convey.ShouldBeNil)
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()

		srv := httptest.NewServer(newHandler(ctx, svc, cfg))
		defer srv.Close()

		convey.Convey("Then the API answers over HTTP", func() {
			resp, err := http.Get(srv.URL + "/clients?limit=3")
			convey.So(err, convey.ShouldBeNil)
			defer func() { _ = resp.Body.Close() }()
			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)

			var entries []types.Entry
			convey.So(json.NewDecoder(resp.Body).Decode(&entries), convey.ShouldBeNil)
			convey.So(len(entries), convey.ShouldEqual, 3)
		})

		convey.Convey("Then the configured list limit is enforced", func() {
			resp, err := http.Get(srv.URL + "/clients?limit=4")
			convey.So(err, convey.ShouldBeNil)
			_ = resp.Body.Close()
			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusBadRequest)
		})

		convey.Convey("Then the API docs are served", func() {
			resp, err := http.Get(srv.URL + "/openapi.yaml")
			convey.So(err, convey.ShouldBeNil)
			_ = resp.Body.Close()
			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
		})

		convey.Convey("Then system metrics can be sampled", func() {
			convey.So(updateSystemMetrics, convey.ShouldNotPanic)
		})
	})
}
