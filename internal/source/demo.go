package source

import (
	"bizdesk/internal/core"
	"bizdesk/internal/datatable"
)

// DemoPassword is the password of every demo user.
const DemoPassword = "demo1234"

// DemoUsers returns the demo logins, one per role plus an admin of the second company.
func DemoUsers() []core.User {
	return []core.User{
		{ID: 1, CompanyID: 1, Username: "root", Name: "Riley Root", Email: "root@bizdesk.test", Role: core.RoleSuperAdmin},
		{ID: 2, CompanyID: 1, Username: "dana", Name: "Dana Reyes", Email: "dana@acme.test", Role: core.RoleAdmin},
		{ID: 3, CompanyID: 1, Username: "eli", Name: "Eli Park", Email: "eli@acme.test", Role: core.RoleEmployee},
		{ID: 4, CompanyID: 1, Username: "globex", Name: "Globex Ltd", Email: "ap@globex.test", Role: core.RoleClient},
		{ID: 5, CompanyID: 2, Username: "nora", Name: "Nora Lind", Email: "nora@initech.test", Role: core.RoleAdmin},
	}
}

// DemoRows returns sample records keyed by resource.
func DemoRows() map[string][]datatable.Row {
	return map[string][]datatable.Row{
		"companies": {
			{"id": 1, "company_code": "ACME", "name": "Acme Corp", "email": "hello@acme.test", "base_currency": "USD", "plan": "pro", "status": "Active", "created_at": "2024-01-08T10:00:00Z"},
			{"id": 2, "company_code": "INIT", "name": "Initech", "email": "info@initech.test", "base_currency": "EUR", "plan": "basic", "status": "Active", "created_at": "2024-03-19T14:30:00Z"},
			{"id": 3, "company_code": "HOOL", "name": "Hooli", "email": "ops@hooli.test", "base_currency": "GBP", "plan": "basic", "status": "Inactive", "created_at": "2024-05-02T09:15:00Z"},
		},
		"clients": {
			{"id": 1, "company_id": 1, "name": "Globex Ltd", "email": "ap@globex.test", "phone": "+1 555 0100", "status": "Active", "created_at": "2024-01-20T08:00:00Z"},
			{"id": 2, "company_id": 1, "name": "Umbrella plc", "email": "finance@umbrella.test", "phone": "+44 20 7946 0000", "status": "Active", "created_at": "2024-02-11T12:00:00Z"},
			{"id": 3, "company_id": 1, "name": "Stark Industries", "email": "billing@stark.test", "phone": "", "status": "Inactive", "created_at": "2024-04-03T16:45:00Z"},
			{"id": 4, "company_id": 2, "name": "Vandelay Imports", "email": "art@vandelay.test", "phone": "+1 555 0199", "status": "Active", "created_at": "2024-04-10T10:30:00Z"},
		},
		"employees": {
			{"id": 1, "company_id": 1, "name": "Eli Park", "email": "eli@acme.test", "department": "Engineering", "designation": "Senior Engineer", "status": "Active", "joined_at": "2023-06-01"},
			{"id": 2, "company_id": 1, "name": "Mara Chen", "email": "mara@acme.test", "department": "Design", "designation": "Product Designer", "status": "Active", "joined_at": "2024-02-12"},
			{"id": 3, "company_id": 1, "name": "Tom Okafor", "email": "tom@acme.test", "department": "Engineering", "designation": "Engineer", "status": "Inactive", "joined_at": "2022-09-19"},
			{"id": 4, "company_id": 2, "name": "Peter Gibbons", "email": "peter@initech.test", "department": "Software", "designation": "Programmer", "status": "Active", "joined_at": "2021-03-01"},
		},
		"projects": {
			{"id": 1, "company_id": 1, "name": "Globex portal", "client_name": "Globex Ltd", "status": "In Progress", "progress": 62.5, "budget": "48000.00", "currency": "USD", "start_date": "2024-02-01", "deadline": "2024-07-31"},
			{"id": 2, "company_id": 1, "name": "Umbrella audit", "client_name": "Umbrella plc", "status": "Completed", "progress": 100, "budget": "12500.00", "currency": "GBP", "start_date": "2024-01-15", "deadline": "2024-03-15"},
			{"id": 3, "company_id": 1, "name": "Mobile refresh", "client_name": "Globex Ltd", "status": "On Hold", "progress": 20, "budget": "30000.00", "currency": "USD", "start_date": "2024-04-01", "deadline": "2024-10-01"},
			{"id": 4, "company_id": 2, "name": "TPS reports", "client_name": "Vandelay Imports", "status": "Not Started", "progress": 0, "budget": "8000.00", "currency": "EUR", "start_date": nil, "deadline": "2024-12-01"},
		},
		"tasks": {
			{"id": 1, "company_id": 1, "title": "Design login flow", "project_name": "Globex portal", "assignee": "Mara Chen", "priority": "High", "status": "Completed", "due_date": "2024-03-01"},
			{"id": 2, "company_id": 1, "title": "Invoice export", "project_name": "Globex portal", "assignee": "Eli Park", "priority": "Urgent", "status": "In Progress", "due_date": "2024-05-20"},
			{"id": 3, "company_id": 1, "title": "Accessibility pass", "project_name": "Mobile refresh", "assignee": "Mara Chen", "priority": "Medium", "status": "Pending", "due_date": "2024-06-30"},
			{"id": 4, "company_id": 1, "title": "Write audit summary", "project_name": "Umbrella audit", "assignee": "Eli Park", "priority": "Low", "status": "Completed", "due_date": "2024-03-10"},
			{"id": 5, "company_id": 2, "title": "New cover sheets", "project_name": "TPS reports", "assignee": "Peter Gibbons", "priority": "Low", "status": "Pending", "due_date": nil},
		},
		"invoices": {
			{"id": 1, "company_id": 1, "invoice_number": "INV-1001", "client_name": "Globex Ltd", "amount": "12000.00", "paid_amount": "12000.00", "currency": "USD", "status": "Paid", "issue_date": "2024-02-01", "due_date": "2024-03-02"},
			{"id": 2, "company_id": 1, "invoice_number": "INV-1002", "client_name": "Umbrella plc", "amount": "12500.00", "paid_amount": "5000.00", "currency": "USD", "status": "Partially Paid", "issue_date": "2024-03-15", "due_date": "2024-04-14"},
			{"id": 3, "company_id": 1, "invoice_number": "INV-1003", "client_name": "Globex Ltd", "amount": "9800.50", "paid_amount": "0", "currency": "USD", "status": "Overdue", "issue_date": "2024-04-01", "due_date": "2024-05-01"},
			{"id": 4, "company_id": 1, "invoice_number": "INV-1004", "client_name": "Stark Industries", "amount": "3150.00", "paid_amount": "0", "currency": "USD", "status": "Unpaid", "issue_date": "2024-05-10", "due_date": "2024-06-09"},
			{"id": 5, "company_id": 2, "invoice_number": "IT-0001", "client_name": "Vandelay Imports", "amount": "2400.00", "paid_amount": "0", "currency": "EUR", "status": "Unpaid", "issue_date": "2024-05-12", "due_date": "2024-06-11"},
		},
		"estimates": {
			{"id": 1, "company_id": 1, "estimate_number": "EST-201", "client_name": "Globex Ltd", "amount": "30000.00", "currency": "USD", "status": "Accepted", "issue_date": "2024-03-20", "valid_until": "2024-04-20"},
			{"id": 2, "company_id": 1, "estimate_number": "EST-202", "client_name": "Umbrella plc", "amount": "7200.00", "currency": "USD", "status": "Waiting", "issue_date": "2024-05-02", "valid_until": "2024-06-01"},
			{"id": 3, "company_id": 2, "estimate_number": "IT-E-01", "client_name": "Vandelay Imports", "amount": "8000.00", "currency": "EUR", "status": "Waiting", "issue_date": "2024-05-05", "valid_until": "2024-06-05"},
		},
		"proposals": {
			{"id": 1, "company_id": 1, "title": "Portal phase two", "client_name": "Globex Ltd", "amount": "42000.00", "currency": "USD", "status": "Sent", "created_at": "2024-05-14T09:00:00Z"},
			{"id": 2, "company_id": 1, "title": "Security review", "client_name": "Umbrella plc", "amount": "9000.00", "currency": "USD", "status": "Draft", "created_at": "2024-05-21T15:20:00Z"},
		},
		"payments": {
			{"id": 1, "company_id": 1, "invoice_number": "INV-1001", "client_name": "Globex Ltd", "amount": "12000.00", "currency": "USD", "method": "Bank Transfer", "status": "Completed", "paid_at": "2024-02-28T11:05:00Z"},
			{"id": 2, "company_id": 1, "invoice_number": "INV-1002", "client_name": "Umbrella plc", "amount": "5000.00", "currency": "USD", "method": "Card", "status": "Completed", "paid_at": "2024-04-02T17:40:00Z"},
			{"id": 3, "company_id": 1, "invoice_number": "INV-1003", "client_name": "Globex Ltd", "amount": "1500.00", "currency": "USD", "method": "Card", "status": "Failed", "paid_at": "2024-05-03T08:12:00Z"},
		},
	}
}

// Demo returns a Static source loaded with DemoRows and DemoUsers.
func Demo() (*Static, error) {
	st := NewStatic()
	for resource, rows := range DemoRows() {
		st.SetRows(resource, rows)
	}
	for _, u := range DemoUsers() {
		if err := st.AddUser(u, DemoPassword); err != nil {
			return nil, err
		}
	}
	return st, nil
}
