package timezone

import "time"

var Location *time.Location

func init() {
	var err error
	Location, err = time.LoadLocation("Europe/Kyiv")
	if err != nil {
		panic(err)
	}
}

// chart snapshot dates are calendar days in the team's timezone;
// hosting regions drift, so never derive Year()/Month()/Day() from
// the server-local clock
func Now() time.Time {
	return time.Now().In(Location)
}

// Date formats a time as the YYYY-MM-DD snapshot-date key.
func Date(t time.Time) string {
	return t.In(Location).Format("2006-01-02")
}

func Today() string {
	return Date(Now())
}

func Yesterday() string {
	return Date(Now().AddDate(0, 0, -1))
}
