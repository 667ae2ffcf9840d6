package events_test

import (
	"errors"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"

	"github.com/d-abe/ReactiveKit/pkg/events"
)

var _ = Describe("Equal", func() {
	It("treats any two completions as equal", func() {
		Expect(events.Equal(events.Completed[int](), events.Completed[int]())).To(BeTrue())
	})

	It("ignores the carried error when comparing failures", func() {
		a := events.Failed[string](errors.New("disk full"))
		b := events.Failed[string](errors.New("timeout"))
		Expect(events.Equal(a, b)).To(BeTrue())
	})

	It("never equates events of different kinds", func() {
		Expect(events.Equal(events.Next(1), events.Completed[int]())).To(BeFalse())
		Expect(events.Equal(events.Completed[int](), events.Next(1))).To(BeFalse())
		Expect(events.Equal(events.Failed[int](nil), events.Completed[int]())).To(BeFalse())
		Expect(events.Equal(events.Next(0), events.Failed[int](errors.New("x")))).To(BeFalse())
	})

	DescribeTable("integers",
		func(a, b int, equal bool) {
			Expect(events.Equal(events.Next(a), events.Next(b))).To(Equal(equal))
		},
		Entry("same", 1, 1, true),
		Entry("different", 1, 2, false),
	)

	DescribeTable("integer sequences",
		func(a, b []int, equal bool) {
			Expect(events.Equal(events.Next(a), events.Next(b))).To(Equal(equal))
		},
		Entry("same", []int{1, 2}, []int{1, 2}, true),
		Entry("both empty", []int{}, []int(nil), true),
		Entry("reordered", []int{1, 2}, []int{2, 1}, false),
		Entry("shorter", []int{1, 2}, []int{1}, false),
	)

	DescribeTable("optional pairs",
		func(a, b events.OptionalPair, equal bool) {
			Expect(events.Equal(events.Next(a), events.Next(b))).To(Equal(equal))
		},
		Entry("both present", events.Some(1, 2), events.Some(1, 2), true),
		Entry("both absent", events.None(2), events.None(2), true),
		Entry("presence differs", events.Some(1, 2), events.None(2), false),
		Entry("first differs", events.Some(1, 2), events.Some(3, 2), false),
		Entry("second differs", events.None(2), events.None(3), false),
	)

	DescribeTable("strings",
		func(a, b string, equal bool) {
			Expect(events.Equal(events.Next(a), events.Next(b))).To(Equal(equal))
		},
		Entry("same", "a", "a", true),
		Entry("different", "a", "b", false),
	)

	DescribeTable("string sequences",
		func(a, b []string, equal bool) {
			Expect(events.Equal(events.Next(a), events.Next(b))).To(Equal(equal))
		},
		Entry("same", []string{"a", "b"}, []string{"a", "b"}, true),
		Entry("different", []string{"a", "b"}, []string{"a", "c"}, false),
	)

	Describe("changesets", func() {
		base := events.Changeset[[]int]{
			Collection: []int{1, 2, 3},
			Inserts:    []int{2},
			Deletes:    []int{},
			Updates:    []int{0},
		}

		It("compares every field", func() {
			same := events.Changeset[[]int]{
				Collection: []int{1, 2, 3},
				Inserts:    []int{2},
				Updates:    []int{0},
			}
			Expect(events.Equal(events.Next(base), events.Next(same))).To(BeTrue())

			changed := same
			changed.Collection = []int{1, 2, 4}
			Expect(events.Equal(events.Next(base), events.Next(changed))).To(BeFalse())

			changed = same
			changed.Inserts = []int{1}
			Expect(events.Equal(events.Next(base), events.Next(changed))).To(BeFalse())

			changed = same
			changed.Deletes = []int{0}
			Expect(events.Equal(events.Next(base), events.Next(changed))).To(BeFalse())

			changed = same
			changed.Updates = nil
			Expect(events.Equal(events.Next(base), events.Next(changed))).To(BeFalse())
		})

		It("compares pair collections in order", func() {
			a := events.Changeset[[]events.Pair]{
				Collection: []events.Pair{{"x", 1}, {"y", 2}},
				Inserts:    []int{1},
			}
			b := events.Changeset[[]events.Pair]{
				Collection: []events.Pair{{"x", 1}, {"y", 2}},
				Inserts:    []int{1},
			}
			Expect(events.Equal(events.Next(a), events.Next(b))).To(BeTrue())

			b.Collection = []events.Pair{{"y", 2}, {"x", 1}}
			Expect(events.Equal(events.Next(a), events.Next(b))).To(BeFalse())
		})
	})
})

var _ = Describe("EqualPairs", func() {
	xy := []events.Pair{{"x", 1}, {"y", 2}}

	It("equals an identical sequence", func() {
		Expect(events.EqualPairs(xy, []events.Pair{{"x", 1}, {"y", 2}})).To(BeTrue())
	})

	It("is order sensitive", func() {
		Expect(events.EqualPairs(xy, []events.Pair{{"y", 2}, {"x", 1}})).To(BeFalse())
	})

	It("is length sensitive", func() {
		Expect(events.EqualPairs(xy, []events.Pair{{"x", 1}})).To(BeFalse())
	})

	It("compares both components", func() {
		Expect(events.EqualPairs(xy, []events.Pair{{"x", 1}, {"y", 3}})).To(BeFalse())
		Expect(events.EqualPairs(xy, []events.Pair{{"x", 1}, {"z", 2}})).To(BeFalse())
	})
})

var _ = Describe("Event", func() {
	It("classifies terminations", func() {
		Expect(events.Next("a").IsTermination()).To(BeFalse())
		Expect(events.Failed[string](nil).IsTermination()).To(BeTrue())
		Expect(events.Completed[string]().IsTermination()).To(BeTrue())
	})

	It("formats sequences for diagnostics", func() {
		seq := append(events.NextAll("a", "b"), events.Failed[string](errors.New("boom")), events.Completed[string]())
		Expect(events.Format(seq)).To(Equal(`[Next("a"), Next("b"), Failed(boom), Completed]`))
		Expect(events.Next(events.None(3)).String()).To(Equal("Next((nil, 3))"))
	})

	It("round trips kind names", func() {
		for _, kind := range []events.Kind{events.KindNext, events.KindFailed, events.KindCompleted} {
			parsed, ok := events.ParseKind(kind.String())
			Expect(ok).To(BeTrue())
			Expect(parsed).To(Equal(kind))
		}
		_, ok := events.ParseKind("Tick")
		Expect(ok).To(BeFalse())
	})
})
