package signature

// DefaultSignatures is the seed list of tracking-vendor domain fragments a
// newly registered site starts with. Owners extend it from the dashboard;
// the generator bakes the site's current list into each artifact.
var DefaultSignatures = []string{
	"googletagmanager.com",
	"google-analytics.com",
	"doubleclick.net",
	"connect.facebook.net",
	"facebook.com/tr",
	"hotjar.com",
	"clarity.ms",
	"mixpanel.com",
	"segment.com",
	"cdn.amplitude.com",
	"matomo.js",
	"fullstory.com",
	"mouseflow.com",
	"crazyegg.com",
	"linkedin.com/px",
	"ads.twitter.com",
	"analytics.tiktok.com",
	"snap.licdn.com",
}
