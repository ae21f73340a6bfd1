// internal/services/template_renderer.go
// 樣板渲染服務 - 以單筆紀錄渲染郵件主旨與內文

package services

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"

	"github.com/Masterminds/sprig/v3"

	"pathway-notify/internal/models"
)

// 預設樣板
const (
	DefaultSubjectTemplate = "Content Deleted from Degreed Pathway: {{ .record.pathway_title }}"
	DefaultBodyTemplate    = "<P>Hi - </P><P>You are receiving this email because you are the creator of the Degreed Pathway: {{ .record.pathway_title }}, and one of the lessons in that pathway is a wiki page that has been removed: {{ .record.wiki_url }}. Please make any necessary changes to the pathway at your earliest convenience.</P><P>Thanks,<br>The Learning Admins</P>"

	DryRunSubjectPrefix = "TESTING - "
	DryRunBodyPrefix    = "<P>TESTING, PLEASE IGNORE</P>"
)

// Templates 單次呼叫使用的主旨與內文樣板
type Templates struct {
	Subject string
	Body    string
}

// BuildTemplates 組合樣板，dry run 時加上測試前綴
// 空白的 subject/body 使用預設樣板
func BuildTemplates(dryRun bool, subject, body string) Templates {
	if subject == "" {
		subject = DefaultSubjectTemplate
	}
	if body == "" {
		body = DefaultBodyTemplate
	}
	if dryRun {
		subject = DryRunSubjectPrefix + subject
		body = DryRunBodyPrefix + body
	}
	return Templates{Subject: subject, Body: body}
}

// TemplateRenderer 樣板渲染器
// 主旨為純文字 (text/template)，內文為 HTML (html/template，會跳脫紀錄內容)
type TemplateRenderer struct{}

// NewTemplateRenderer 建立樣板渲染器
func NewTemplateRenderer() *TemplateRenderer {
	return &TemplateRenderer{}
}

// RenderSubject 渲染主旨
func (r *TemplateRenderer) RenderSubject(tpl string, record models.Record) (string, error) {
	tmpl, err := texttemplate.New("subject").Funcs(sprig.TxtFuncMap()).Option("missingkey=error").Parse(tpl)
	if err != nil {
		return "", fmt.Errorf("%w: failed to parse subject template: %v", models.ErrTemplate, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, templateContext(record)); err != nil {
		return "", fmt.Errorf("%w: failed to execute subject template: %v", models.ErrTemplate, err)
	}
	return buf.String(), nil
}

// RenderBody 渲染 HTML 內文
func (r *TemplateRenderer) RenderBody(tpl string, record models.Record) (string, error) {
	tmpl, err := htmltemplate.New("body").Funcs(sprig.HtmlFuncMap()).Option("missingkey=error").Parse(tpl)
	if err != nil {
		return "", fmt.Errorf("%w: failed to parse body template: %v", models.ErrTemplate, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, templateContext(record)); err != nil {
		return "", fmt.Errorf("%w: failed to execute body template: %v", models.ErrTemplate, err)
	}
	return buf.String(), nil
}

func templateContext(record models.Record) map[string]any {
	return map[string]any{"record": record.TemplateData()}
}
