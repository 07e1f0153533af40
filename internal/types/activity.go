package types

import (
	"encoding/json"
	"strconv"
	"strings"
)

// StringOrNumber is a string field that also accepts a JSON number on the
// wire. The CRM sync is inconsistent about whether monetary fields arrive
// as strings or numbers.
type StringOrNumber string

// UnmarshalJSON accepts either a JSON string or a JSON number
func (s *StringOrNumber) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*s = ""
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = StringOrNumber(str)
		return nil
	}
	var num float64
	if err := json.Unmarshal(data, &num); err != nil {
		return err
	}
	*s = StringOrNumber(strconv.FormatFloat(num, 'f', -1, 64))
	return nil
}

// Activity is one ticket record as delivered by the CRM. Every field is
// optional at the boundary; absent values are empty strings. Activities are
// immutable inputs to the analytics engine — nothing downstream mutates them.
type Activity struct {
	ID      string `json:"id" dynamodbav:"ActivityID" bson:"activity_id"`
	DateKey string `json:"dateKey,omitempty" dynamodbav:"DateKey" bson:"date_key"` // YYYY-MM-DD partition key, derived from DateCreated

	// Grouping references
	AgentRef          string `json:"agentRef" dynamodbav:"AgentRef" bson:"agent_ref"`
	TSMRef            string `json:"tsmRef" dynamodbav:"TSMRef" bson:"tsm_ref"`
	DepartmentHeadRef string `json:"departmentHeadRef" dynamodbav:"DepartmentHeadRef" bson:"department_head_ref"`

	// Classification fields (free text from the ticket form)
	Traffic        string `json:"traffic" dynamodbav:"Traffic" bson:"traffic"`
	Status         string `json:"status" dynamodbav:"Status" bson:"status"`
	Remarks        string `json:"remarks" dynamodbav:"Remarks" bson:"remarks"`
	WrapUp         string `json:"wrapUp" dynamodbav:"WrapUp" bson:"wrap_up"`
	CustomerStatus string `json:"customerStatus" dynamodbav:"CustomerStatus" bson:"customer_status"`

	// Commercial fields
	SOAmount StringOrNumber `json:"soAmount" dynamodbav:"SOAmount" bson:"so_amount"`
	QtySold  StringOrNumber `json:"qtySold" dynamodbav:"QtySold" bson:"qty_sold"`

	// Lifecycle timestamps (ISO-parseable strings, each optional)
	DateCreated        string `json:"dateCreated" dynamodbav:"DateCreated" bson:"date_created"`
	TicketReceived     string `json:"ticketReceived" dynamodbav:"TicketReceived" bson:"ticket_received"`
	TicketEndorsed     string `json:"ticketEndorsed" dynamodbav:"TicketEndorsed" bson:"ticket_endorsed"`
	TSAAcknowledgeDate string `json:"tsaAcknowledgeDate" dynamodbav:"TSAAcknowledgeDate" bson:"tsa_acknowledge_date"`
	TSAHandlingTime    string `json:"tsaHandlingTime" dynamodbav:"TSAHandlingTime" bson:"tsa_handling_time"`
	TSMAcknowledgeDate string `json:"tsmAcknowledgeDate" dynamodbav:"TSMAcknowledgeDate" bson:"tsm_acknowledge_date"`
	TSMHandlingTime    string `json:"tsmHandlingTime" dynamodbav:"TSMHandlingTime" bson:"tsm_handling_time"`

	// Display-only fields
	CompanyName   string `json:"companyName" dynamodbav:"CompanyName" bson:"company_name"`
	ContactPerson string `json:"contactPerson" dynamodbav:"ContactPerson" bson:"contact_person"`
}

// Grouping selects which reference field a report is keyed on
type Grouping string

const (
	GroupByAgent   Grouping = "agents"
	GroupByManager Grouping = "managers"
	GroupByHead    Grouping = "heads"
)

// AllGroupings lists every report grouping published to the dashboard
var AllGroupings = []Grouping{GroupByAgent, GroupByManager, GroupByHead}

// KeyOf returns the grouping key for an activity, or "" when the
// activity carries no reference for this grouping
func (g Grouping) KeyOf(a Activity) string {
	switch g {
	case GroupByAgent:
		return a.AgentRef
	case GroupByManager:
		return a.TSMRef
	case GroupByHead:
		return a.DepartmentHeadRef
	default:
		return ""
	}
}

// Valid reports whether g is a known grouping
func (g Grouping) Valid() bool {
	switch g {
	case GroupByAgent, GroupByManager, GroupByHead:
		return true
	}
	return false
}
