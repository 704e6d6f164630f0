package csvio

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/attriwatch/attriwatch/internal/domain/employee"
	"github.com/attriwatch/attriwatch/internal/domain/features"
	"github.com/attriwatch/attriwatch/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestReadTable(t *testing.T) {
	Convey("Given a CSV upload", t, func() {
		in := "\ufeffAge,JobRole,OverTime,MonthlyIncome\n41,Sales Executive,Yes,5993\n49, Research Scientist,No,\n"

		table, err := ReadTable(strings.NewReader(in))

		Convey("Then the header and rows are parsed", func() {
			So(err, ShouldBeNil)
			So(table.Columns, ShouldResemble, []string{"Age", "JobRole", "OverTime", "MonthlyIncome"})
			So(table.Len(), ShouldEqual, 2)
			age, ok := table.Rows[0]["Age"].Float()
			So(ok, ShouldBeTrue)
			So(age, ShouldEqual, 41)
			So(table.Rows[1]["JobRole"].String(), ShouldEqual, "Research Scientist")
		})

		Convey("Then empty cells are absent fields", func() {
			_, ok := table.Rows[1].Get("MonthlyIncome")
			So(ok, ShouldBeFalse)
		})
	})

	Convey("Given malformed input", t, func() {
		_, err := ReadTable(strings.NewReader(""))
		So(errors.Is(err, ErrEmptyInput), ShouldBeTrue)

		_, err = ReadTable(strings.NewReader("Age,Age\n1,2\n"))
		So(errors.Is(err, ErrMalformed), ShouldBeTrue)

		_, err = ReadTable(strings.NewReader("Age,JobRole\n1,\"unterminated\n"))
		So(errors.Is(err, ErrMalformed), ShouldBeTrue)
	})

	Convey("Given rows with fewer or more cells than the header", t, func() {
		in := "Age,MonthlyIncome,JobRole\n30,5000,Manager\n41,6000\n29,4000,Manager,extra\n35,4500,Manager\n"

		table, err := ReadTable(strings.NewReader(in))

		Convey("Then every row keeps its position and only the long row is rejected", func() {
			So(err, ShouldBeNil)
			So(table.Len(), ShouldEqual, 4)
			So(table.RowErr(0), ShouldBeNil)
			So(table.RowErr(1), ShouldBeNil)
			So(errors.Is(table.RowErr(2), features.ErrMalformedRow), ShouldBeTrue)
			So(table.RowErr(3), ShouldBeNil)
		})

		Convey("Then the missing trailing cells of a short row are absent fields", func() {
			_, ok := table.Rows[1].Get("JobRole")
			So(ok, ShouldBeFalse)
			So(table.Rows[1]["MonthlyIncome"].String(), ShouldEqual, "6000")
		})
	})
}

func TestWritePriority(t *testing.T) {
	Convey("Given scored rows", t, func() {
		rec := employee.Record{
			"Age":           employee.Number(35),
			"JobRole":       employee.Text("Sales Executive"),
			"Department":    employee.Text("Sales"),
			"MonthlyIncome": employee.Number(5000),
		}
		rows := []types.RowResult{
			{Row: 1, Record: rec, Prediction: types.Prediction{AttritionProbability: 0.8, PerformanceProbability: 0.75, IsPriority: true}},
			{Row: 2, Record: rec, Prediction: types.Prediction{AttritionProbability: 0.2, PerformanceProbability: 0.9}},
		}

		var buf bytes.Buffer
		So(WritePriority(&buf, rows), ShouldBeNil)

		Convey("Then only priority rows are exported with raw text", func() {
			lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
			So(lines, ShouldHaveLength, 2)
			So(lines[0], ShouldEqual, "Age,JobRole,Department,MonthlyIncome,AttritionProb,PerformanceProb")
			So(lines[1], ShouldEqual, "35,Sales Executive,Sales,5000,0.8,0.75")
		})
	})

	Convey("Given no priority rows", t, func() {
		var buf bytes.Buffer
		So(WritePriority(&buf, nil), ShouldBeNil)
		So(strings.Count(buf.String(), "\n"), ShouldEqual, 1)
	})
}

func TestWriteTable(t *testing.T) {
	Convey("Given a table with an absent field", t, func() {
		table := employee.Table{
			Columns: []string{"Age", "JobRole", "MonthlyIncome"},
			Rows: []employee.Record{
				{"Age": employee.Number(41), "JobRole": employee.Text("Sales Executive"), "MonthlyIncome": employee.Number(5993.5)},
				{"Age": employee.Number(29), "JobRole": employee.Text("Manager, Sales")},
			},
		}
		var buf bytes.Buffer

		Convey("Then it writes quoted text and empty cells", func() {
			So(WriteTable(&buf, table), ShouldBeNil)
			So(buf.String(), ShouldEqual, "Age,JobRole,MonthlyIncome\n41,Sales Executive,5993.5\n29,\"Manager, Sales\",\n")
		})

		Convey("Then reading it back gives the same records", func() {
			So(WriteTable(&buf, table), ShouldBeNil)
			back, err := ReadTable(&buf)
			So(err, ShouldBeNil)
			So(back.Columns, ShouldResemble, table.Columns)
			So(back.Rows, ShouldResemble, table.Rows)
		})

		Convey("Then a table without columns is rejected", func() {
			So(errors.Is(WriteTable(&buf, employee.Table{}), ErrEmptyInput), ShouldBeTrue)
		})
	})
}
