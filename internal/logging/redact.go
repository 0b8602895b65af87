package logging

import (
	"strings"

	"github.com/DevRickLin/reject-console/internal/biz/domain"
)

// RedactEmail keeps the first character of the local part and the domain
// so operators can still correlate log lines: "jane@example.com" becomes
// "j***@example.com". Input that is not a single valid address is fully masked.
func RedactEmail(address string) string {
	if !domain.IsAddress(address) {
		return "***"
	}
	local, host, _ := strings.Cut(address, "@")
	return local[:1] + "***@" + host
}
