package repository

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/prioritise/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func seedSQLite(t *testing.T, table string, stmts ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clients.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = db.Close() }()
	ddl := `CREATE TABLE ` + quoteIdent(table) + ` (
		id TEXT, name TEXT, email TEXT, phone TEXT, account_count TEXT,
		"Total Portfolio AUA" REAL, TotalFees TEXT, LoginsL12M INTEGER, MeetingsL12M REAL)`
	if _, err := db.Exec(ddl); err != nil {
		t.Fatalf("ddl: %v", err)
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			t.Fatalf("seed %q: %v", s, err)
		}
	}
	return path
}

const insert = `INSERT INTO clients (id, name, email, phone, account_count, "Total Portfolio AUA", TotalFees, LoginsL12M, MeetingsL12M) VALUES `

func TestSQLiteSource(t *testing.T) {
	Convey("Given a SQLite client table with loosely typed metrics", t, func() {
		path := seedSQLite(t, "clients",
			insert+`('c1', 'Ann', 'ann@example.com', '555', '2', 650000, '12000', 20, 6)`,
			insert+`('c2', 'Bob', NULL, NULL, NULL, NULL, 'n/a', -5, 2.5)`,
			insert+`('c3', 'Cy', NULL, NULL, NULL, 1000000, '', NULL, NULL)`,
		)
		src := NewSQLiteSource(path)

		Convey("When the cohort is loaded", func() {
			records, err := src.Load(context.Background())

			Convey("Then rows come back in insertion order with loose values", func() {
				So(err, ShouldBeNil)
				So(len(records), ShouldEqual, 3)
				So(records[0].ID, ShouldEqual, "c1")
				So(records[0].Email, ShouldEqual, "ann@example.com")
				So(records[0].AUA.Float(), ShouldEqual, 650000.0)
				So(records[0].Fees.Float(), ShouldEqual, 12000.0)
				So(records[0].Logins.Float(), ShouldEqual, 20.0)
				So(records[0].Meetings.Float(), ShouldEqual, 6.0)
			})

			Convey("Then null, negative and non-numeric metrics coerce to zero", func() {
				c := records[1].Normalize()
				So(c.AUA, ShouldEqual, 0.0)
				So(c.Fees, ShouldEqual, 0.0)
				So(c.Logins, ShouldEqual, 0.0)
				So(c.Meetings, ShouldEqual, 2.5)
			})

			Convey("Then large real values survive the text round trip", func() {
				So(records[2].AUA.Float(), ShouldEqual, 1000000.0)
			})
		})
	})

	Convey("Given a custom table name", t, func() {
		path := seedSQLite(t, "book")
		src := NewSQLiteSource(path, WithTable("book"))

		records, err := src.Load(context.Background())
		So(err, ShouldBeNil)
		So(records, ShouldBeEmpty)
	})

	Convey("Given a missing database file", t, func() {
		path := filepath.Join(t.TempDir(), "nope.db")
		_, err := NewSQLiteSource(path).Load(context.Background())

		So(errors.Is(err, ErrLoad), ShouldBeTrue)
		_, statErr := os.Stat(path)
		So(os.IsNotExist(statErr), ShouldBeTrue)
	})

	Convey("Given a database without the client table", t, func() {
		path := seedSQLite(t, "other")
		_, err := NewSQLiteSource(path).Load(context.Background())
		So(errors.Is(err, ErrLoad), ShouldBeTrue)
	})

	Convey("Given duplicate identifiers", t, func() {
		path := seedSQLite(t, "clients",
			insert+`('c1', 'Ann', NULL, NULL, NULL, 1, '1', 1, 1)`,
			insert+`(' c1 ', 'Ann again', NULL, NULL, NULL, 2, '2', 2, 2)`,
		)
		_, err := NewSQLiteSource(path).Load(context.Background())
		So(errors.Is(err, ErrDuplicateClient), ShouldBeTrue)
	})
}

func TestCSVSource(t *testing.T) {
	Convey("Given a CSV with columns in any order", t, func() {
		path := writeFile(t, "clients.csv",
			"\ufeffname,id,TotalFees,Total Portfolio AUA,LoginsL12M,MeetingsL12M,extra\n"+
				"Ann,c1,12000,650000,20,6,x\n"+
				"Bob,c2,n/a,-1,,2.5,y\n")

		records, err := NewCSVSource(path).Load(context.Background())

		Convey("Then fields are addressed by header", func() {
			So(err, ShouldBeNil)
			So(len(records), ShouldEqual, 2)
			So(records[0].ID, ShouldEqual, "c1")
			So(records[0].Name, ShouldEqual, "Ann")
			So(records[0].Normalize(), ShouldResemble, model.Client{
				ID: "c1", Name: "Ann", AUA: 650000, Fees: 12000, Logins: 20, Meetings: 6,
			})
			So(records[1].Normalize(), ShouldResemble, model.Client{
				ID: "c2", Name: "Bob", Meetings: 2.5,
			})
		})
	})

	Convey("Given an empty file", t, func() {
		records, err := NewCSVSource(writeFile(t, "empty.csv", "")).Load(context.Background())
		So(err, ShouldBeNil)
		So(records, ShouldBeEmpty)
	})

	Convey("Given a header without an id column", t, func() {
		_, err := NewCSVSource(writeFile(t, "noid.csv", "name,TotalFees\nAnn,1\n")).Load(context.Background())
		So(errors.Is(err, ErrMissingColumn), ShouldBeTrue)
	})

	Convey("Given a row with a blank identifier", t, func() {
		_, err := NewCSVSource(writeFile(t, "blank.csv", "id,TotalFees\nc1,1\n  ,2\n")).Load(context.Background())
		So(errors.Is(err, ErrMissingID), ShouldBeTrue)
		So(err.Error(), ShouldContainSubstring, "row 2")
	})

	Convey("Given a missing file", t, func() {
		_, err := NewCSVSource(filepath.Join(t.TempDir(), "x.csv")).Load(context.Background())
		So(errors.Is(err, ErrLoad), ShouldBeTrue)
	})

	Convey("Given a cancelled context", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := NewCSVSource(writeFile(t, "c.csv", "id\nc1\n")).Load(ctx)
		So(errors.Is(err, context.Canceled), ShouldBeTrue)
	})
}

func TestNewAndStatic(t *testing.T) {
	Convey("Given source kinds", t, func() {
		s, err := New("SQLite", "x.db", WithTable("t"))
		So(err, ShouldBeNil)
		So(s.(*SQLiteSource).table, ShouldEqual, "t")

		s, err = New("csv", "x.csv")
		So(err, ShouldBeNil)
		So(s, ShouldHaveSameTypeAs, &CSVSource{})

		_, err = New("postgres", "")
		So(errors.Is(err, ErrUnknownKind), ShouldBeTrue)
	})

	Convey("Given a static source", t, func() {
		in := []model.ClientRecord{{ID: "a"}, {ID: "b"}}
		src := NewStaticSource(in)
		in[0].ID = "changed"

		out, err := src.Load(context.Background())
		So(err, ShouldBeNil)
		So(out[0].ID, ShouldEqual, "a")

		_, err = NewStaticSource([]model.ClientRecord{{ID: "a"}, {ID: "a"}}).Load(context.Background())
		So(errors.Is(err, ErrDuplicateClient), ShouldBeTrue)
	})
}
