// Package site declares the product's navigable hierarchy: the public
// marketing pages, the login entry point and the role-gated back-office
// shells. The whole access policy lives in this one declarative table;
// the guard package is its only interpreter.
package site

import (
	"github.com/edusuite/backoffice/internal/access"
	"github.com/edusuite/backoffice/internal/route"
	"github.com/edusuite/backoffice/internal/session"
)

func page(segment, name string, required *access.RoleSet) *route.Node {
	return &route.Node{Segment: segment, Required: required, View: NewPage(name)}
}

func index(name string) *route.Node {
	return &route.Node{Index: true, View: NewPage(name)}
}

// Routes builds the product route table. Public marketing pages carry no
// requirement; /dashboard requires authentication with any role (the
// explicit empty set); sections below it tighten access per role.
func Routes() *route.Node {
	superAdmin := access.Roles(session.RoleSuperAdmin)
	admin := access.Roles(session.RoleAdmin)
	teacher := access.Roles(session.RoleTeacher)
	staff := access.Roles(session.RoleStaff)
	adminTeacher := access.Roles(session.RoleAdmin, session.RoleTeacher)
	adminTeacherStaff := access.Roles(session.RoleAdmin, session.RoleTeacher, session.RoleStaff)

	dashboard := &route.Node{
		Segment:  "dashboard",
		Required: access.Roles(), // authenticated, any role
		View:     NewShell("dashboard", "Dashboard"),
		Children: []*route.Node{
			index("dashboard-home"),
			page("profile", "profile", nil),

			// Super-admin sections
			page("super-admin", "super-admin-panel", superAdmin),
			page("schools", "schools-management", superAdmin),
			page("users", "users-management", superAdmin),
			page("subscriptions", "subscriptions", superAdmin),
			page("analytics", "system-analytics", superAdmin),

			// Admin sections
			page("school", "school-management", admin),
			page("staff", "staff-management", admin),
			page("finances", "financial-management", admin),

			// Teaching sections
			page("classes", "classes", adminTeacher),
			page("students", "students", adminTeacherStaff),
			page("schedule", "class-schedule", teacher),
			page("assignments", "assignments", teacher),
			page("grades", "grades", teacher),

			// Staff sections
			page("attendance", "attendance", adminTeacherStaff),
			page("records", "records-management", staff),

			// Shared sections
			page("announcements", "announcements", adminTeacherStaff),
			page("reports", "reports", adminTeacher),
			page("notifications", "notifications", nil),
			page("documents", "documents", nil),
			page("settings", "settings", nil),

			// Forms management shell
			{
				Segment:  "forms",
				Required: superAdmin,
				View:     NewShell("forms", "Forms Management"),
				Children: []*route.Node{
					page("demo-requests", "demo-requests", nil),
					page("contact-forms", "contact-forms", nil),
					page("support-requests", "support-requests", nil),
				},
			},

			// CMS shell
			{
				Segment:  "cms",
				Required: superAdmin,
				View:     NewShell("cms", "Content Management"),
				Children: []*route.Node{
					index("cms-dashboard"),
					page("pages", "pages-manager", nil),
					page("media", "media-manager", nil),
					page("pricing", "pricing-manager", nil),
					page("sections", "sections-management", nil),
					page("content", "content-management", nil),
					page("users", "cms-users", nil),
					page("settings", "cms-settings", nil),
				},
			},

			// Store shell, open to any authenticated role
			{
				Segment: "store",
				View:    NewShell("store", "Store"),
				Children: []*route.Node{
					index("store-dashboard"),
					page("addons", "addons-manager", nil),
					page("orders", "orders-manager", nil),
					page("analytics", "store-analytics", nil),
					page("settings", "store-settings", nil),
				},
			},
		},
	}

	return &route.Node{
		Children: []*route.Node{
			index("home"),
			page("versions", "versions", nil),
			page("features", "features", nil),
			page("demo", "demo", nil),
			page("pricing", "pricing", nil),
			page("contact", "contact", nil),
			page("about", "about", nil),
			page("terms", "terms", nil),
			page("privacy", "privacy", nil),
			page("faq", "faq", nil),
			page("support", "support", nil),
			page("store", "store", nil),
			page("login", "login", nil),
			dashboard,
		},
	}
}

// Tree builds the validated, immutable route tree for the product.
func Tree() (*route.Tree, error) {
	return route.NewTree(Routes())
}
