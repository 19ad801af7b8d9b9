package timezone

import "time"

var Location *time.Location

func init() {
	var err error
	Location, err = time.LoadLocation("America/Lima")
	if err != nil {
		panic(err)
	}
}

// force timezone to Lima because crawl hosts are not guaranteed to run
// in Peru, which will cause disturbances when manipulating dates based
// on <time.Time>.Year()/Month()/Day()
func Now() time.Time {
	return time.Now().In(Location)
}
