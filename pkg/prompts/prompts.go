package prompts

import (
	"bytes"
	"fmt"
	"os"
	"text/template"

	"gopkg.in/yaml.v3"
)

const defaultPromptsPath = "prompts.yaml"

// ClosingSentence is the mandatory call-to-action every generated script has
// to end with.
const ClosingSentence = "Mọi người mua sản phẩm thì ấn vào link ở bình luận nha."

const defaultScriptPrompt = `Bạn là người viết kịch bản cho video bán hàng trên sàn thương mại điện tử.
Hãy viết một kịch bản lồng tiếng bằng tiếng Việt cho video dài {{.Duration}} giây giới thiệu sản phẩm "{{.ProductName}}".
Sản phẩm đang có giá chỉ {{.Price}}, giá gốc {{.OriginalPrice}}, giảm {{.Discount}}.
Kịch bản phải dài đúng {{.TargetLength}} ký tự, giọng điệu tự nhiên, hào hứng, dễ nghe khi đọc thành tiếng.
Kịch bản bắt buộc phải kết thúc bằng câu: "Mọi người mua sản phẩm thì ấn vào link ở bình luận nha."
Chỉ trả về nội dung kịch bản, không thêm lời giải thích.`

const defaultOverlayPrompt = `Bạn là người viết kịch bản cho video bán hàng trên sàn thương mại điện tử.
Hãy viết một kịch bản lồng tiếng bằng tiếng Việt cho video dài {{.Duration}} giây giới thiệu sản phẩm "{{.ProductName}}".
Sản phẩm đang có giá chỉ {{.Price}}, giá gốc {{.OriginalPrice}}, giảm {{.Discount}}.
Kịch bản phải dài đúng {{.TargetLength}} ký tự, giọng điệu tự nhiên, hào hứng, dễ nghe khi đọc thành tiếng.
Kịch bản bắt buộc phải kết thúc bằng câu: "Mọi người mua sản phẩm thì ấn vào link ở bình luận nha."
Ngoài ra hãy viết một dòng chữ ngắn hiển thị trên video (tối đa 70 ký tự) nêu bật điểm hấp dẫn nhất của sản phẩm.
Trả về đúng một đối tượng JSON với hai trường "script" và "overlay".
Không bọc JSON trong khối mã markdown, không thêm bất kỳ văn bản nào khác.`

type Prompts struct {
	Script ScriptPrompts `yaml:"script"`
}

type ScriptPrompts struct {
	Single      string `yaml:"single"`
	WithOverlay string `yaml:"with_overlay"`
}

// ScriptParams carries everything the templates interpolate. Duration and
// TargetLength stay strings: they come straight from the environment and are
// rendered as-is, garbage in, garbage in the prompt.
type ScriptParams struct {
	ProductName   string
	Price         string
	OriginalPrice string
	Discount      string
	Duration      string
	TargetLength  string
}

// Load returns the built-in Vietnamese templates, overridden by prompts.yaml
// when one exists in the working directory.
func Load() (*Prompts, error) {
	p := defaults()

	data, err := os.ReadFile(defaultPromptsPath)
	if os.IsNotExist(err) {
		return p, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read prompts file: %w", err)
	}

	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("parse prompts file: %w", err)
	}

	if p.Script.Single == "" {
		p.Script.Single = defaultScriptPrompt
	}
	if p.Script.WithOverlay == "" {
		p.Script.WithOverlay = defaultOverlayPrompt
	}

	return p, nil
}

func defaults() *Prompts {
	return &Prompts{
		Script: ScriptPrompts{
			Single:      defaultScriptPrompt,
			WithOverlay: defaultOverlayPrompt,
		},
	}
}

func (p *Prompts) RenderScript(params ScriptParams) (string, error) {
	return render(p.Script.Single, params)
}

func (p *Prompts) RenderScriptWithOverlay(params ScriptParams) (string, error) {
	return render(p.Script.WithOverlay, params)
}

func render(tmpl string, data any) (string, error) {
	t, err := template.New("prompt").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}

	return buf.String(), nil
}
