// Package disposal maps waste categories to human-readable disposal
// instructions.
package disposal

// Fallback is returned for any category without a dedicated instruction.
const Fallback = "Please follow local waste management guidelines."

var instructions = map[string]string{
	"Recyclable":    "Please clean the item and place it in the recycling bin. Make sure it's dry and free from food residue.",
	"Organic":       "Place in the compost bin or organic waste container. If composting at home, ensure proper layering with dry materials.",
	"Hazardous":     "Do not mix with regular waste. Take to a hazardous waste collection center or follow local disposal guidelines.",
	"General Waste": "Place in the general waste bin. Ensure the item is properly sealed if it contains any liquids or food residue.",
}

// Instructions returns the disposal instruction for category. Lookup is
// exact and case-sensitive; unknown categories get Fallback.
func Instructions(category string) string {
	if s, ok := instructions[category]; ok {
		return s
	}
	return Fallback
}
