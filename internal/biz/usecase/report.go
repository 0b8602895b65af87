package usecase

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/DevRickLin/reject-console/internal/biz/domain"
)

const (
	historyDateLayout = "2006-01-02 15:04:05"
	noSubject         = "(no subject)"
	noHistory         = "No recent send history found."
	emptyRejectList   = "The reject list is empty. No addresses are blocked."
)

var (
	smtpCodePattern   = regexp.MustCompile(`(\d{3})[-\s](\d\.\d{1,3}\.\d{1,3})`)
	smtpPrefixPattern = regexp.MustCompile(`\d{3}[-\s]\d\.\d{1,3}\.\d{1,3}\s*`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// SMTPDetail is the parsed form of a receiving server's diagnostic text
type SMTPDetail struct {
	Code    string // "550 (5.1.1)", empty when the text carries no status code
	Message string
}

// ParseSMTPDetail extracts the first status code and enhanced status code
// pair and returns the diagnostic with every code prefix removed.
func ParseSMTPDetail(detail string) SMTPDetail {
	var parsed SMTPDetail
	if m := smtpCodePattern.FindStringSubmatch(detail); m != nil {
		parsed.Code = fmt.Sprintf("%s (%s)", m[1], m[2])
	}

	cleaned := whitespacePattern.ReplaceAllString(detail, " ")
	cleaned = smtpPrefixPattern.ReplaceAllString(cleaned, "")
	parsed.Message = strings.TrimSpace(cleaned)
	return parsed
}

// FormatReject renders one reject entry as a text block
func FormatReject(entry domain.RejectEntry) string {
	lines := []string{
		"--- Reject Info ---",
		"Reason    : " + entry.Reason.Label(),
	}
	if entry.Subaccount != nil && *entry.Subaccount != "" {
		lines = append(lines, "Subaccount: "+*entry.Subaccount)
	}

	if strings.TrimSpace(entry.Detail) != "" {
		smtp := ParseSMTPDetail(entry.Detail)
		lines = append(lines, "", "--- SMTP Detail ---")
		if smtp.Code != "" {
			lines = append(lines, "  SMTP Code: "+smtp.Code)
		}
		if smtp.Message != "" {
			lines = append(lines, "  Message  : "+smtp.Message)
		}
	}

	lines = append(lines,
		"",
		"--- Timeline ---",
		"Added        : "+entry.CreatedAt,
		"Last event   : "+entry.LastEventAt,
	)
	if entry.HasExpiry() {
		lines = append(lines, "Auto-remove  : "+*entry.ExpiresAt)
	}
	if entry.Expired {
		lines = append(lines, "Expiry status: Expired")
	} else {
		lines = append(lines, "Expiry status: Active (not expired)")
	}

	if s := entry.Sender; s != nil {
		lines = append(lines,
			"",
			"--- Sender Stats ---",
			"Sender    : "+s.Address,
			"Sent      : "+humanize.Comma(s.Sent),
			fmt.Sprintf("Bounces   : %s hard, %s soft", humanize.Comma(s.HardBounces), humanize.Comma(s.SoftBounces)),
			"Rejects   : "+humanize.Comma(s.Rejects),
			"Complaints: "+humanize.Comma(s.Complaints),
			"Unsubs    : "+humanize.Comma(s.Unsubs),
			fmt.Sprintf("Opens     : %s (%s unique)", humanize.Comma(s.Opens), humanize.Comma(s.UniqueOpens)),
			fmt.Sprintf("Clicks    : %s (%s unique)", humanize.Comma(s.Clicks), humanize.Comma(s.UniqueClicks)),
		)
	}

	return strings.Join(lines, "\n")
}

// FormatHistory renders send history, flagging messages reported as spam
func FormatHistory(entries []domain.MessageEntry) string {
	if len(entries) == 0 {
		return noHistory
	}

	lines := []string{fmt.Sprintf("--- Send History (%d) ---", len(entries))}
	spam := 0
	for i, e := range entries {
		subject := strings.TrimSpace(e.Subject)
		if subject == "" {
			subject = noSubject
		}

		status := e.State.Label()
		if e.IsSpam() {
			status += " [SPAM]"
			spam++
		}

		lines = append(lines,
			fmt.Sprintf("%d. %s UTC", i+1, e.SentAt().Format(historyDateLayout)),
			"   Subject: "+subject,
			"   Status : "+status,
			fmt.Sprintf("   Opens  : %d | Clicks: %d", e.Opens, e.Clicks),
			"   Sender : "+e.Sender,
		)
	}

	if spam > 0 {
		lines = append(lines, "", fmt.Sprintf("Spam reports: %d of %d messages", spam, len(entries)))
	}
	return strings.Join(lines, "\n")
}

// FormatCheck renders the reply to a single-address check
func FormatCheck(r *CheckResult) string {
	var lines []string
	if !r.Blocked() {
		lines = []string{
			"Status: CLEAN",
			"Email: " + r.Address,
			"Not found on the reject list.",
		}
		if r.HistoryIncluded {
			lines = append(lines, "", FormatHistory(r.History))
		}
		return strings.Join(lines, "\n")
	}

	lines = []string{
		"Status: BLOCKED",
		"Email: " + r.Address,
		"",
		"Detail:",
	}
	for i, entry := range r.Entries {
		if len(r.Entries) > 1 {
			if i > 0 {
				lines = append(lines, "")
			}
			lines = append(lines, fmt.Sprintf("[%d]", i+1))
		}
		lines = append(lines, FormatReject(entry))
	}
	if r.HistoryIncluded {
		lines = append(lines, "", FormatHistory(r.History))
	}
	lines = append(lines, "", fmt.Sprintf("Use /remove %s to remove it from the reject list.", r.Address))
	return strings.Join(lines, "\n")
}

// FormatBulk renders a bulk check report with its summary
func FormatBulk(r *BulkResult) string {
	lines := []string{
		"Bulk Check Report",
		strings.Repeat("=", 30),
		"",
	}
	lines = append(lines, r.Lines()...)
	lines = append(lines,
		"",
		"Summary:",
		fmt.Sprintf("  Clean: %d", r.Clean),
		fmt.Sprintf("  Blocked: %d", r.Blocked),
		fmt.Sprintf("  Errors: %d", r.Errors),
		fmt.Sprintf("  Total: %d", r.Total()),
	)
	return strings.Join(lines, "\n")
}

// FormatList renders the full active reject list, one line per entry
func FormatList(entries []domain.RejectEntry) string {
	if len(entries) == 0 {
		return emptyRejectList
	}

	lines := make([]string, 0, len(entries)+2)
	lines = append(lines, fmt.Sprintf("Total blocked: %d", len(entries)), "")
	for i, e := range entries {
		lines = append(lines, fmt.Sprintf("%d. %s (%s) - %s", i+1, e.Email, e.Reason, e.CreatedAt))
	}
	return strings.Join(lines, "\n")
}
