// Package preference stores a visitor's display preferences: colour theme,
// interface language and sidebar state.
//
// Each preference exists per scope. The public site and the admin panel keep
// separate values, and the profile page has its own language:
//
//	theme      site: "theme"            admin: "admin-theme"
//	language   site: "language"         admin: "admin-language-preference"
//	           profile: "profileLanguage"
//	sidebar    site: "sidebarCollapsed" admin: "adminSidebarCollapsed"
//
// Every setter publishes a Change on the visitor's scope.
package preference
