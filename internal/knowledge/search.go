package knowledge

import (
	"context"
	"fmt"
	"strings"

	"github.com/hostwise-ai/hostwise/pkg/logging"
)

// FAQSearcher answers restaurant questions from the FAQ collection, falling
// back to canned keyword answers when retrieval is unavailable.
type FAQSearcher struct {
	retriever Retriever
	logger    *logging.Logger
}

func NewFAQSearcher(retriever Retriever, logger *logging.Logger) *FAQSearcher {
	return &FAQSearcher{retriever: retriever, logger: logger}
}

// Answer runs a semantic search over the FAQ collection.
func (s *FAQSearcher) Answer(ctx context.Context, question string) string {
	if s.retriever != nil {
		docs, err := s.retriever.Query(ctx, CollectionFAQ, question, 3)
		if err != nil {
			s.logger.Warn("faq search failed, using fallback", "error", err)
		} else if len(docs) > 0 {
			combined := strings.Join(docs, "\n\n")
			response := "📋 **From our FAQ:**\n\n" + combined
			if len(combined) < 100 {
				response += "\n\n💡 For more detailed information, please call us at (555) 123-4567."
			}
			return response
		}
	}
	return fallbackFAQ(question)
}

// MenuSearcher finds dishes in the menu collection.
type MenuSearcher struct {
	retriever Retriever
	logger    *logging.Logger
}

func NewMenuSearcher(retriever Retriever, logger *logging.Logger) *MenuSearcher {
	return &MenuSearcher{retriever: retriever, logger: logger}
}

// Search runs a semantic search over the menu collection.
func (s *MenuSearcher) Search(ctx context.Context, query string) string {
	if s.retriever != nil {
		docs, err := s.retriever.Query(ctx, CollectionMenu, query, 4)
		if err != nil {
			s.logger.Warn("menu search failed, using fallback", "error", err)
		} else if len(docs) > 0 {
			combined := strings.Join(docs, "\n\n")
			response := fmt.Sprintf("🍽️ **Menu Search Results for: '%s'**\n\n", query)
			response += "📋 **From our Menu:**\n\n" + combined
			if len(combined) < 100 {
				response += "\n\n💡 For more detailed menu information, please ask your server or call us at (555) 123-4567."
			}
			return response
		}
	}
	return fallbackMenu(query)
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func fallbackFAQ(question string) string {
	q := strings.ToLower(question)
	switch {
	case containsAny(q, "hours", "open", "close", "time"):
		return "🕐 **Restaurant Hours:**\n\n" +
			"Monday - Thursday: 10:00 AM - 11:00 PM\n" +
			"Friday - Saturday: 10:00 AM - 12:00 AM (Midnight)\n" +
			"Sunday: 10:00 AM - 10:00 PM\n\n" +
			"We accept reservations during all operating hours. Last seating is 30 minutes before closing time."
	case containsAny(q, "policy", "cancel", "change", "modify"):
		return "📋 **Reservation Policy:**\n\n" +
			"• Reservations can be made up to 30 days in advance\n" +
			"• We accommodate parties of 1-20 people\n" +
			"• Free changes up to 2 hours before your reservation\n" +
			"• Free cancellation up to 2 hours before your reservation\n" +
			"• No-show fees may apply for parties of 8 or more\n" +
			"• Parties over 20 people require special arrangements"
	case containsAny(q, "location", "address", "parking", "where"):
		return "📍 **Location & Parking:**\n\n" +
			"• Address: 123 Main Street, Downtown City, State 12345\n" +
			"• Parking: Complimentary valet parking available\n" +
			"• Public Transit: 2 blocks from Central Station\n" +
			"• Accessibility: Wheelchair accessible entrance and restrooms"
	case containsAny(q, "menu", "food", "dietary", "vegan", "vegetarian", "gluten"):
		return "🍽️ **Menu & Dietary Information:**\n\n" +
			"• Cuisine: Modern American with international influences\n" +
			"• Dietary Options: Vegetarian, vegan, and gluten-free options available\n" +
			"• Allergies: Please inform us of any allergies when booking or upon arrival\n" +
			"• Kids Menu: Children's menu available for ages 12 and under\n" +
			"• Price Range: $25-45 per entree, $8-15 appetizers"
	case containsAny(q, "dress", "attire", "clothing", "wear"):
		return "👔 **Dress Code:**\n\n" +
			"• Smart Casual is our preferred dress code\n" +
			"• Acceptable: Business casual, nice jeans with dress shirt, dresses, slacks\n" +
			"• Not Recommended: Athletic wear, flip-flops, tank tops, torn clothing"
	case containsAny(q, "payment", "pay", "credit", "cash", "tip"):
		return "💳 **Payment & Gratuity:**\n\n" +
			"• Payment Methods: We accept all major credit cards, cash, and contactless payments\n" +
			"• Gratuity: 18% gratuity is automatically added to parties of 8 or more\n" +
			"• Split Bills: We can accommodate split payments for up to 4 cards\n" +
			"• Gift Cards: Restaurant gift cards available for purchase"
	case containsAny(q, "contact", "phone", "email", "call"):
		return "📞 **Contact Information:**\n\n" +
			"• Phone: (555) 123-4567\n" +
			"• Email: reservations@restaurant.com\n" +
			"• Website: www.restaurant.com\n" +
			"• Hours for Calls: Monday-Sunday, 9:00 AM - 9:00 PM"
	case containsAny(q, "events", "party", "birthday", "private", "celebration"):
		return "🎉 **Special Events & Private Dining:**\n\n" +
			"• Private Dining Room: Available for groups of 15-40 people\n" +
			"• Birthday Celebrations: Complimentary dessert with advance notice\n" +
			"• Corporate Events: Business lunch and dinner packages\n" +
			"• Catering: Off-site catering available for events"
	default:
		return "❓ **I'd be happy to help!**\n\n" +
			"I can provide information about:\n\n" +
			"🕐 **Restaurant Hours** - Operating times and schedules\n" +
			"📋 **Reservation Policies** - Booking, changes, and cancellation rules\n" +
			"📍 **Location & Parking** - Address, directions, and parking info\n" +
			"🍽️ **Menu & Dietary Options** - Food, dietary restrictions, and cuisine\n" +
			"👔 **Dress Code** - Appropriate attire guidelines\n" +
			"💳 **Payment & Tipping** - Accepted payment methods and gratuity\n" +
			"📞 **Contact Information** - Phone, email, and social media\n" +
			"🎉 **Special Events** - Private dining, celebrations, and catering\n\n" +
			"Please ask me about any of these topics, or contact us directly at (555) 123-4567 for immediate assistance."
	}
}

func fallbackMenu(query string) string {
	q := strings.ToLower(query)
	switch {
	case containsAny(q, "vegetarian", "veggie", "vegan"):
		return "🌱 **Vegetarian & Vegan Options:**\n\n" +
			"**Appetizers:**\n" +
			"• Vegan Spring Rolls - $14 (V, GF)\n" +
			"• Truffle Arancini - $16 (Vegetarian)\n\n" +
			"**Mains:**\n" +
			"• Vegetarian Pasta - $24 (House-made tagliatelle with seasonal vegetables)\n" +
			"• Vegan Buddha Bowl - $22 (V, GF - Quinoa, roasted vegetables, tahini)\n\n" +
			"**Desserts:**\n" +
			"• Vegan Cheesecake - $10 (Cashew-based with berry compote)\n\n" +
			"*V = Vegan, GF = Gluten-Free*"
	case containsAny(q, "seafood", "fish", "salmon", "lobster", "scallop"):
		return "🐟 **Seafood Selections:**\n\n" +
			"**Appetizers:**\n" +
			"• Seared Scallops - $18 (Pan-seared with cauliflower puree)\n" +
			"• Oysters Rockefeller - $19 (Fresh oysters with spinach and herbs)\n\n" +
			"**Mains:**\n" +
			"• Pan-Seared Salmon - $32 (Atlantic salmon with quinoa pilaf)\n" +
			"• Lobster Thermidor - $45 (Whole lobster with cream sauce)\n\n" +
			"All seafood is sourced daily for optimal freshness."
	case containsAny(q, "meat", "beef", "steak", "lamb"):
		return "🥩 **Premium Meats:**\n\n" +
			"**Mains:**\n" +
			"• Wagyu Ribeye - $65 (12oz premium wagyu with roasted vegetables)\n" +
			"• Osso Buco - $38 (Braised veal shank with saffron risotto)\n" +
			"• Duck Confit - $34 (Slow-cooked duck leg with wild rice)\n" +
			"• Lamb Rack - $42 (Herb-crusted with ratatouille)\n\n" +
			"All meats are sourced from premium suppliers and prepared to your preference."
	case containsAny(q, "dessert", "sweet", "chocolate"):
		return "🍰 **Dessert Menu:**\n\n" +
			"• Chocolate Lava Cake - $12 (Warm cake with molten center)\n" +
			"• Tiramisu - $11 (Classic Italian with espresso)\n" +
			"• Vegan Cheesecake - $10 (Cashew-based, dairy-free)\n" +
			"• Crème Brûlée - $9 (Vanilla custard, gluten-free)\n" +
			"• Seasonal Fruit Tart - $11 (Fresh seasonal fruits)\n\n" +
			"Perfect ending to your dining experience!"
	case containsAny(q, "drink", "wine", "cocktail", "beverage"):
		return "🍷 **Beverage Menu:**\n\n" +
			"• **Wine Selection** ($8-25/glass) - Curated international wines\n" +
			"• **Craft Cocktails** ($12-18) - House-crafted with premium spirits\n" +
			"• **Fresh Juices** ($6-8) - Seasonal fruit juices\n" +
			"• **Coffee & Espresso** ($4-6) - Premium coffee drinks\n\n" +
			"Our sommelier can help pair wines with your meal."
	default:
		return "🍽️ **Our Menu Categories:**\n\n" +
			"**🥗 Appetizers** ($14-19)\nStart your meal with our signature starters\n\n" +
			"**🍖 Main Courses** ($22-65)\nFrom pasta to premium steaks and fresh seafood\n\n" +
			"**🍰 Desserts** ($9-12)\nSweet endings to perfect your dining experience\n\n" +
			"**🍷 Beverages** ($4-25)\nWine, cocktails, and specialty drinks\n\n" +
			"Ask me about specific items, dietary options, or recommendations!"
	}
}
