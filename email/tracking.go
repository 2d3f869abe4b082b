package email

import (
	"net/url"
	"strings"
)

var trackingURLs = map[string]string{
	"DHL":           "https://www.dhl.at/at-de/home/tracking.html?tracking-id=",
	"DPD":           "https://tracking.dpd.de/status/de_DE/parcel/",
	"Austrian Post": "https://www.post.at/sv/sendungsdetails?snr=",
	"Post":          "https://www.deutschepost.de/de/s/sendungsverfolgung.html?piececode=",
	"GLS":           "https://gls-group.eu/AT/de/paketverfolgung?match=",
}

// TrackingURL 回傳物流商的追蹤網址，未知的物流商改用搜尋引擎查詢
func TrackingURL(carrier, trackingNumber string) string {
	if prefix, ok := trackingURLs[carrier]; ok {
		if strings.HasSuffix(prefix, "/") {
			return prefix + url.PathEscape(trackingNumber)
		}
		return prefix + url.QueryEscape(trackingNumber)
	}
	query := url.Values{"q": {strings.TrimSpace(carrier + " tracking " + trackingNumber)}}
	return "https://www.google.com/search?" + query.Encode()
}
