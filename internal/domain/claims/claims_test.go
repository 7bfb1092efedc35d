package claims

import (
	"sync"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestClaimer(t *testing.T) {
	Convey("Given a new claim set", t, func() {
		c := New(WithCapacity(4))

		Convey("When a key is claimed twice", func() {
			first := c.SeenAndClaim("k")
			second := c.SeenAndClaim("k")

			Convey("Then only the second reports it as seen", func() {
				So(first, ShouldBeFalse)
				So(second, ShouldBeTrue)
				So(c.Claimed("k"), ShouldBeTrue)
				So(c.Size(), ShouldEqual, 1)
			})
		})

		Convey("When a key is only checked", func() {
			claimed := c.Claimed("k")

			Convey("Then it stays unclaimed", func() {
				So(claimed, ShouldBeFalse)
				So(c.Size(), ShouldEqual, 0)
				So(c.SeenAndClaim("k"), ShouldBeFalse)
			})
		})

		Convey("When many goroutines claim the same key", func() {
			var wg sync.WaitGroup
			var mu sync.Mutex
			winners := 0
			for i := 0; i < 32; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					if !c.SeenAndClaim("shared") {
						mu.Lock()
						winners++
						mu.Unlock()
					}
				}()
			}
			wg.Wait()

			Convey("Then exactly one wins", func() {
				So(winners, ShouldEqual, 1)
				So(c.Size(), ShouldEqual, 1)
			})
		})
	})

	Convey("Given pair and copy keys", t, func() {
		Convey("Then they never collide", func() {
			So(PairKey("A", "t1"), ShouldEqual, "pair:t1/A")
			So(CopyKey("t1/A"), ShouldNotEqual, PairKey("A", "t1"))
		})
	})
}
