package messages

import (
	"encoding/json"
	"testing"
)

func textPayload(from, id, body string) WebhookPayload {
	return WebhookPayload{
		Object: "whatsapp_business_account",
		Entry: []Entry{{
			ID: "entry-1",
			Changes: []Change{{
				Field: "messages",
				Value: ChangeValue{
					MessagingProduct: "whatsapp",
					Messages: []Message{{
						From: from,
						ID:   id,
						Type: "text",
						Text: &TextBody{Body: body},
					}},
				},
			}},
		}},
	}
}

func TestExtractMessageReturnsFirstMessage(testContext *testing.T) {
	payload := textPayload("255712345678", "wamid.A", "Hi")

	message, ok := ExtractMessage(payload)
	if !ok {
		testContext.Fatalf("expected a message to be extracted")
	}
	if message.From != "255712345678" {
		testContext.Fatalf("unexpected sender: got %q, want %q", message.From, "255712345678")
	}
	if message.ID != "wamid.A" {
		testContext.Fatalf("unexpected message id: got %q, want %q", message.ID, "wamid.A")
	}
}

func TestExtractMessageIgnoresDeliveriesWithoutMessages(testContext *testing.T) {
	cases := map[string]WebhookPayload{
		"empty payload":   {},
		"no entries":      {Object: "whatsapp_business_account"},
		"entry no change": {Entry: []Entry{{ID: "entry-1"}}},
		"wrong field": {Entry: []Entry{{
			Changes: []Change{{Field: "message_template_status_update"}},
		}}},
		"status update only": {Entry: []Entry{{
			Changes: []Change{{
				Field: "messages",
				Value: ChangeValue{
					Statuses: []Status{{ID: "wamid.A", Status: "delivered"}},
				},
			}},
		}}},
	}

	for name, payload := range cases {
		if _, ok := ExtractMessage(payload); ok {
			testContext.Fatalf("%s: expected no message", name)
		}
	}
}

func TestExtractMessageParsesRawPlatformEnvelope(testContext *testing.T) {
	raw := `{
		"object": "whatsapp_business_account",
		"entry": [{
			"id": "101",
			"changes": [{
				"field": "messages",
				"value": {
					"messaging_product": "whatsapp",
					"metadata": {"display_phone_number": "255700000000", "phone_number_id": "9001"},
					"contacts": [{"profile": {"name": "Asha"}, "wa_id": "255712345678"}],
					"messages": [{
						"from": "255712345678",
						"id": "wamid.RAW",
						"timestamp": "1700000000",
						"type": "text",
						"text": {"body": "habari"}
					}]
				}
			}]
		}]
	}`

	var payload WebhookPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		testContext.Fatalf("failed to unmarshal envelope: %v", err)
	}

	message, ok := ExtractMessage(payload)
	if !ok {
		testContext.Fatalf("expected a message to be extracted")
	}
	if NormalizeText(message) != "habari" {
		testContext.Fatalf("unexpected normalized text: got %q, want %q", NormalizeText(message), "habari")
	}
}

func TestNormalizeTextUsesBodyForTextMessages(testContext *testing.T) {
	message := Message{Type: "text", Text: &TextBody{Body: "Hi"}}
	if got := NormalizeText(message); got != "Hi" {
		testContext.Fatalf("unexpected text: got %q, want %q", got, "Hi")
	}
}

func TestNormalizeTextIsEmptyWhenBodyAbsent(testContext *testing.T) {
	message := Message{Type: "text"}
	if got := NormalizeText(message); got != "" {
		testContext.Fatalf("expected empty text, got %q", got)
	}
}

func TestNormalizeTextBracketsNonTextTypes(testContext *testing.T) {
	cases := map[string]string{
		"image":    "[image]",
		"document": "[document]",
		"audio":    "[audio]",
	}
	for messageType, want := range cases {
		message := Message{Type: messageType}
		if got := NormalizeText(message); got != want {
			testContext.Fatalf("type %q: got %q, want %q", messageType, got, want)
		}
	}
}
