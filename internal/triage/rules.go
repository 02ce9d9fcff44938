package triage

import "github.com/jonesrussell/review-triage/internal/domain"

// cascadeRule pairs a category with the keywords that select it. Rules are
// evaluated top-down and the first rule with any keyword hit wins, so the
// order below is load-bearing: several keyword sets overlap ("easy" appears
// under both app_interface and feedback) and the earlier rule always takes
// the review. Reordering changes observable classification.
type cascadeRule struct {
	Category string
	Keywords []string
}

// cascade is the fixed tie-break table for category inference. Keywords are
// matched case-insensitively as substrings of the review text.
var cascade = []cascadeRule{
	{
		Category: domain.CategoryDiscountsOffers,
		Keywords: []string{"discounts_offers", "deals", "discounts", "offers"},
	},
	{
		Category: domain.CategoryAppInterface,
		Keywords: []string{
			"app_interface", "friendly", "easy", "seamless", "experience",
			"commendable", "nice", "option", "user-friendly",
		},
	},
	{
		Category: domain.CategoryCustomerSupport,
		Keywords: []string{
			"customer_support", "customer", "support", "chat", "service",
			"worst", "dealing",
		},
	},
	{
		Category: domain.CategoryEaseOfReturn,
		Keywords: []string{"ease_of_return", "return", "pickup", "cancelled"},
	},
	{
		Category: domain.CategoryBug,
		Keywords: []string{
			"bug", "uninstall", "loading", "error", "closes", "solve",
			"lag", "problem",
		},
	},
	{
		Category: domain.CategoryFeatureRequest,
		Keywords: []string{"feature_request", "feature"},
	},
	{
		Category: domain.CategoryQuestion,
		Keywords: []string{"question", "why", "what"},
	},
	{
		Category: domain.CategoryFeedback,
		Keywords: []string{
			"feedback", "easy", "useful", "features", "safe", "reliable",
			"secure", "best", "great",
		},
	},
}
