package interactive

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/plugwise-go/plugwise-setup/pkg/flow"
)

// errFormCancelled is returned when the user interrupts a form.
var errFormCancelled = errors.New("form cancelled")

// prompter reads answers from the user.
type prompter interface {
	// Line reads one line of input.
	Line(prompt string) (string, error)

	// Password reads a line without echoing it.
	Password(prompt string) (string, error)
}

// errorText is the message shown for each error code.
var errorText = map[string]string{
	flow.ErrorKindAuth.Code():    "Invalid authentication, check the Smile ID",
	flow.ErrorKindConnect.Code(): "Failed to connect",
	flow.ErrorKindUnknown.Code(): "Unexpected error",
}

// abortText is the message shown for each abort reason.
var abortText = map[string]string{
	flow.AbortAlreadyConfigured: "This gateway is already configured",
	flow.AbortAlreadyInProgress: "A setup flow for this gateway is already in progress",
	flow.AbortUserCancelled:     "Setup cancelled",
}

// fieldLabels are the prompts shown for known fields.
var fieldLabels = map[string]string{
	flow.FieldHost:     "IP address",
	flow.FieldPort:     "Port",
	flow.FieldUsername: "Smile username",
	flow.FieldPassword: "Smile ID",
}

func describeError(code string) string {
	if text, ok := errorText[code]; ok {
		return text
	}
	return code
}

func describeAbort(reason string) string {
	if text, ok := abortText[reason]; ok {
		return text
	}
	return reason
}

// printForm writes the header of a form: its title and any errors of
// the previous attempt.
func printForm(w io.Writer, res flow.Result) {
	title := "Connect to the Smile"
	if name := res.Placeholders[flow.FieldName]; name != "" {
		title = fmt.Sprintf("%s (%s)", title, name)
	}
	fmt.Fprintf(w, "\n%s\n", title)
	if host := res.Placeholders[flow.FieldHost]; host != "" {
		fmt.Fprintf(w, "  Gateway at %s:%s, user %s\n", host, res.Placeholders[flow.FieldPort], res.Placeholders[flow.FieldUsername])
	}

	keys := make([]string, 0, len(res.Errors))
	for k := range res.Errors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if k == flow.ErrorBase {
			fmt.Fprintf(w, "  Error: %s\n", describeError(res.Errors[k]))
		} else {
			fmt.Fprintf(w, "  Error (%s): %s\n", k, describeError(res.Errors[k]))
		}
	}
}

// fillForm asks for every field of the schema. Empty answers leave
// the field out so the schema default applies; required fields
// without a default are asked again.
func fillForm(p prompter, w io.Writer, schema *flow.Schema) (map[string]any, error) {
	raw := make(map[string]any, len(schema.Fields))
	for _, f := range schema.Fields {
		for {
			answer, err := askField(p, w, f)
			if err != nil {
				return nil, err
			}
			if answer == "" {
				if f.Required && f.Default == nil {
					fmt.Fprintf(w, "  %s is required\n", fieldLabel(f))
					continue
				}
				break
			}

			value, ok := parseAnswer(f, answer)
			if !ok {
				fmt.Fprintf(w, "  Invalid %s: %s\n", f.Type, answer)
				continue
			}
			raw[f.Name] = value
			break
		}
	}
	return raw, nil
}

func askField(p prompter, w io.Writer, f flow.Field) (string, error) {
	prompt := fieldLabel(f)
	if f.Type == flow.FieldTypeSelect {
		for i, o := range f.Options {
			fmt.Fprintf(w, "  [%d] %s\n", i+1, o.Label)
		}
	}
	if f.Default != nil {
		prompt = fmt.Sprintf("%s [%v]", prompt, f.Default)
	}
	prompt += ": "

	var answer string
	var err error
	if f.Secret {
		answer, err = p.Password(prompt)
	} else {
		answer, err = p.Line(prompt)
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(answer), nil
}

func fieldLabel(f flow.Field) string {
	if label, ok := fieldLabels[f.Name]; ok {
		return label
	}
	return f.Name
}

// parseAnswer converts typed input into the value submitted for the
// field. Select fields accept the option number or its value.
func parseAnswer(f flow.Field, answer string) (any, bool) {
	switch f.Type {
	case flow.FieldTypeInt:
		n, err := strconv.Atoi(answer)
		if err != nil {
			return nil, false
		}
		return n, true
	case flow.FieldTypeSelect:
		if i, err := strconv.Atoi(answer); err == nil && i >= 1 && i <= len(f.Options) {
			return f.Options[i-1].Value, true
		}
		for _, o := range f.Options {
			if strings.EqualFold(o.Value, answer) {
				return o.Value, true
			}
		}
		return nil, false
	default:
		return answer, true
	}
}
