package types_test

import (
	"sort"
	"testing"

	types "github.com/okian/gridiron/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestEntryOrdering(t *testing.T) {
	Convey("Given graded throws", t, func() {
		entries := []types.Entry{
			{ThrowID: "c", Score: 62.5, Grade: "C"},
			{ThrowID: "a", Score: 88, Grade: "A"},
			{ThrowID: "b", Score: 62.5, Grade: "C"},
			{ThrowID: "d", Score: 15, Grade: "F"},
		}

		Convey("When sorted with Ahead", func() {
			sort.Slice(entries, func(i, j int) bool { return entries[i].Ahead(entries[j]) })

			Convey("Then higher scores lead and ties fall back to throw id", func() {
				ids := make([]string, len(entries))
				for i, e := range entries {
					ids[i] = e.ThrowID
				}
				So(ids, ShouldResemble, []string{"a", "b", "c", "d"})
			})
		})

		Convey("When an entry is compared with itself", func() {
			Convey("Then it is not ahead", func() {
				So(entries[0].Ahead(entries[0]), ShouldBeFalse)
			})
		})
	})
}
