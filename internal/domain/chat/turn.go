// Package chat defines the conversational domain: intents, extracted
// entities, and the reply shape composed for one query. A chat turn is
// ephemeral; nothing here is persisted.
package chat

// Intent is the discrete interpretation of a user query used to dispatch
// the response composer.
type Intent string

const (
	IntentUnknown       Intent = "unknown"
	IntentGreeting      Intent = "general_greeting"
	IntentWebsiteInfo   Intent = "website_info"
	IntentWhoAreYou     Intent = "who_are_you"
	IntentClassifyImage Intent = "classify_food_image"
	IntentClassifyFood  Intent = "classify_food_item"
	IntentSubstitutes   Intent = "get_substitutes"
	IntentNutrition     Intent = "get_nutritional_info"
	IntentHowTo         Intent = "get_how_to_link"
)

// Entities carries the slots extracted alongside an intent. SecondaryIntent
// is only ever attached to IntentClassifyImage and chains a follow-up
// action on the top prediction.
type Entities struct {
	FoodItem        string
	SecondaryIntent Intent
	HowToTopic      string
}

// Turn captures one resolved query. It lives for the duration of a single
// request.
type Turn struct {
	Text      string
	ImagePath string
	Intent    Intent
	Entities  Entities
}

// Reply is the structured response composed for one turn.
type Reply struct {
	Response              string   `json:"response"`
	ImageURL              string   `json:"image_url,omitempty"`
	LinkText              string   `json:"link_text,omitempty"`
	LinkURL               string   `json:"link_url,omitempty"`
	DisambiguationMatches []string `json:"disambiguation_matches,omitempty"`
}
