package classifier

import (
	"fmt"
	"sort"
	"strings"
)

// BuildPrompt renders the verification instructions. Addresses are listed in
// a stable order so identical inputs produce identical prompts.
func BuildPrompt(addresses map[string]string, expectedAmount *float64) string {
	var b strings.Builder
	b.WriteString("You are a payment fraud analyst. Decide whether the attached image is a genuine screenshot of a completed payment.\n\n")
	b.WriteString("1. Identify the wallet or exchange the screenshot comes from.\n")
	b.WriteString("2. Identify the asset sent and the network it was sent on.\n")

	if len(addresses) > 0 {
		b.WriteString("3. Find the recipient address. It must exactly match one of these authorized addresses:\n")
		labels := make([]string, 0, len(addresses))
		for label := range addresses {
			labels = append(labels, label)
		}
		sort.Strings(labels)
		for _, label := range labels {
			fmt.Fprintf(&b, "   - %s: %s\n", strings.ToUpper(label), addresses[label])
		}
	} else {
		b.WriteString("3. Find the recipient address and report it.\n")
	}

	b.WriteString("4. The transaction must be shown as completed, successful, confirmed or sent. Pending, failed or unsent transfers are not genuine.\n")
	if expectedAmount != nil {
		fmt.Fprintf(&b, "5. The payment amount must be $%.2f, within $0.05 for fees or rounding. A different amount is not genuine; say so in the reason.\n", *expectedAmount)
	}

	b.WriteString("\nRules:\n")
	if len(addresses) > 0 {
		b.WriteString("- A recipient address that matches none of the authorized addresses means isReal is false.\n")
	}
	b.WriteString("- Visual inconsistencies such as mismatched fonts or misaligned UI mean isReal is false.\n")
	b.WriteString("- Hold a high standard of evidence and lower the confidence when anything looks off.\n\n")
	b.WriteString(`Reply with JSON only:
{"isReal": boolean, "confidence": number between 0 and 1, "platform": string, "crypto": string, "detectedAddress": string, "reason": string}`)
	return b.String()
}
