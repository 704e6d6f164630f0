package features

import (
	"errors"
	"testing"

	"github.com/attriwatch/attriwatch/internal/domain/employee"
	. "github.com/smartystreets/goconvey/convey"
)

func textTable() employee.Table {
	row := func(ot, dept string, age float64) employee.Record {
		return employee.Record{
			OverTime:   employee.Text(ot),
			Department: employee.Text(dept),
			Age:        employee.Number(age),
			"Over18":   employee.Text("Y"),
		}
	}
	return employee.Table{
		Columns: []string{Age, OverTime, Department, "Over18"},
		Rows: []employee.Record{
			row("Yes", "Sales", 41),
			row("No", "Research & Development", 49),
			row("Yes", "Sales", 37),
		},
	}
}

func TestFactorizer(t *testing.T) {
	Convey("Given a table with text columns", t, func() {
		f := NewFactorizer(textTable())

		Convey("Then codes follow first occurrence", func() {
			yes, err := f.Encode(OverTime, employee.Text("Yes"))
			So(err, ShouldBeNil)
			So(yes, ShouldEqual, 0)
			no, _ := f.Encode(OverTime, employee.Text("No"))
			So(no, ShouldEqual, 1)
		})

		Convey("Then numeric columns pass through", func() {
			age, err := f.Encode(Age, employee.Number(41))
			So(err, ShouldBeNil)
			So(age, ShouldEqual, 41)
		})

		Convey("Then unseen categories fail", func() {
			_, err := f.Encode(Department, employee.Text("Human Resources"))
			So(errors.Is(err, ErrEncoding), ShouldBeTrue)
		})

		Convey("Then a frozen vocabulary skips ignored columns", func() {
			v := f.Vocabulary("v1")
			So(v.Version, ShouldEqual, "v1")
			So(v.Columns, ShouldContainKey, OverTime)
			So(v.Columns, ShouldContainKey, Department)
			So(v.Columns, ShouldNotContainKey, "Over18")
		})

		Convey("Then the vocabulary can be restricted", func() {
			v := f.Vocabulary("v1", OverTime)
			So(v.Columns, ShouldHaveLength, 1)
		})
	})
}

func TestVocabulary(t *testing.T) {
	Convey("Given a fixed vocabulary", t, func() {
		v := &Vocabulary{
			Version: "2024-01",
			Columns: map[string]map[string]int{OverTime: {"No": 0, "Yes": 1}},
		}

		Convey("Then text maps to stable codes regardless of batch order", func() {
			yes, err := v.Encode(OverTime, employee.Text("Yes"))
			So(err, ShouldBeNil)
			So(yes, ShouldEqual, 1)
		})

		Convey("Then pre-mapped numbers pass through", func() {
			n, err := v.Encode(OverTime, employee.Number(1))
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 1)
		})

		Convey("Then unknown text is an encoding error", func() {
			_, err := v.Encode(OverTime, employee.Text("Sometimes"))
			So(errors.Is(err, ErrEncoding), ShouldBeTrue)
			_, err = v.Encode(Department, employee.Text("Sales"))
			So(errors.Is(err, ErrEncoding), ShouldBeTrue)
		})

		Convey("Then a nil vocabulary accepts numbers only", func() {
			var empty *Vocabulary
			n, err := empty.Encode(Age, employee.Number(3))
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 3)
			_, err = empty.Encode(OverTime, employee.Text("Yes"))
			So(err, ShouldNotBeNil)
		})
	})
}
