package watchful

import (
	"fmt"
	"reflect"
)

// DashboardLink returns the CloudWatch console URL of a dashboard.
//
// It is pure string formatting; either argument may be a deferred
// placeholder from package token.
func DashboardLink(region, dashboardName string) string {
	return fmt.Sprintf("https://console.aws.amazon.com/cloudwatch/home?region=%s#dashboards:name=%s", region, dashboardName)
}

// IsWatchable reports whether v can register itself with a [Watchful], that
// is, whether it is a non-nil value implementing [Watchable].
//
// Use it to pick the self-monitoring resources out of a mixed collection:
//
//	for title, r := range resources {
//	    if watchful.IsWatchable(r) {
//	        err = wf.Watch(title, r.(watchful.Watchable))
//	    }
//	}
func IsWatchable(v any) bool {
	w, ok := v.(Watchable)
	if !ok {
		return false
	}

	// a typed nil pointer satisfies the interface but cannot register
	rv := reflect.ValueOf(w)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return !rv.IsNil()
	}
	return true
}
