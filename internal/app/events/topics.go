package events

// Action names carried in list-topic payloads. Consumers treat any message as
// an invalidation trigger; the action string is advisory.
const (
	ActionAddItem     = "addItem"
	ActionCheckItem   = "checkItem"
	ActionUncheckItem = "uncheckItem"
	ActionUpdateItem  = "updateItem"
	ActionDeleteItem  = "deleteItem"
)

// ActionPayload is the message body published on item mutations.
type ActionPayload struct {
	Action string `json:"action"`
}

// ListTopic names the channel announcing item mutations for a list.
// The id is the list's dashless hex form.
func ListTopic(listHex string) string {
	return "list." + listHex
}

// ListSettingsTopic names the channel announcing list metadata changes.
func ListSettingsTopic(listHex string) string {
	return "list." + listHex + ".settings"
}

// ListDeleteTopic names the channel announcing removal of the list itself.
func ListDeleteTopic(listHex string) string {
	return "list." + listHex + ".delete"
}
