package api

import (
	"fmt"
	"html/template"
	"io/fs"
	"strings"
)

var pageTemplates = []string{
	"login",
	"register",
	"change_password",
	"dashboard",
	"not_found",
}

func parsePageTemplates(templates fs.FS, funcMap template.FuncMap, pages []string) (map[string]*template.Template, error) {
	parsed := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		tmpl, err := template.New("base").Funcs(funcMap).ParseFS(templates, "base.html", page+".html")
		if err != nil {
			return nil, fmt.Errorf("parse page template %s: %w", page, err)
		}
		parsed[page] = tmpl
	}
	return parsed, nil
}

func newTemplateFuncMap() template.FuncMap {
	return template.FuncMap{
		"t":             translateMessage,
		"tf":            translateFormat,
		"roleLabel":     templateRoleLabel,
		"formatHours":   formatTemplateHours,
		"isActiveRoute": isActiveTemplateRoute,
	}
}

func templateRoleLabel(messages map[string]string, role string) string {
	return translateMessage(messages, roleTranslationKey(role))
}

func formatTemplateHours(value float64) string {
	return fmt.Sprintf("%.2f", value)
}

func isActiveTemplateRoute(currentPath string, route string) bool {
	path := strings.TrimSpace(currentPath)
	if path == "" {
		return route == "/"
	}
	if route == "/" {
		return path == "/" || strings.HasPrefix(path, "/?")
	}
	return path == route || strings.HasPrefix(path, route+"?") || strings.HasPrefix(path, route+"/")
}
