package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// CommandKind discriminates what a chat message asked for.
type CommandKind string

const (
	CommandAdd         CommandKind = "add"
	CommandReceiveInfo CommandKind = "receive-info"
	CommandRemind      CommandKind = "remind"
	CommandHelp        CommandKind = "help"
)

// Payload is the partial task shape produced by the add grammar. Absent fields
// keep their zero value; the task service fills in defaults before scoring.
type Payload struct {
	Title        string
	Category     string
	DueDate      string
	Impact       string
	Effort       int
	RequiredInfo []string
	Tags         []string
}

// Command is the parsed form of one inbound message.
type Command struct {
	Kind     CommandKind
	Payload  Payload
	InfoItem string
	TaskID   int64
}

var (
	addNaturalPrefix = regexp.MustCompile(`^(agregar|anadir|crear(?: tarea)?|nueva(?: tarea)?)\s+`)
	receivePattern   = regexp.MustCompile(`(?i)recib[ií]:?\s*(.+?)\s+para\s+(\d+)`)
	categoryPattern  = regexp.MustCompile(`categoria\s*[:=]?\s*(escuela|trabajo)`)
	datePattern      = regexp.MustCompile(`\b(?:fecha|para|el)\b\s*[:=]?\s*([^.,;]+)`)
	impactPattern    = regexp.MustCompile(`impact[oa]?\s*[:=]?\s*(bajo|medio|alto|critico|critical|high|medium|low)`)
	effortPattern    = regexp.MustCompile(`(?:esfuerzo|effort)\s*[:=]?\s*(\d+)`)
	infoPattern      = regexp.MustCompile(`(?:informacion|info)\s*[:=]?\s*([^\n]+)`)
	tagsPattern      = regexp.MustCompile(`(?:tags|etiquetas)\s*[:=]?\s*([^\n]+)`)
)

// Parse maps one free-form message to a Command. Unrecognized input becomes a
// help request rather than an error; the webhook always has a reply.
func Parse(body string, today time.Time) Command {
	body = strings.TrimSpace(body)
	normalized := Normalize(body)

	switch {
	case strings.HasPrefix(normalized, "add:"):
		return Command{Kind: CommandAdd, Payload: parseAddLegacy(body[4:], today)}
	case addNaturalPrefix.MatchString(normalized):
		return Command{Kind: CommandAdd, Payload: parseAddNatural(body, today)}
	case strings.HasPrefix(normalized, "recibi"):
		if m := receivePattern.FindStringSubmatch(body); m != nil {
			id, _ := strconv.ParseInt(m[2], 10, 64)
			return Command{Kind: CommandReceiveInfo, InfoItem: strings.TrimSpace(m[1]), TaskID: id}
		}
		return Command{Kind: CommandHelp}
	case strings.HasPrefix(normalized, "recordar"), strings.HasPrefix(normalized, "top"):
		return Command{Kind: CommandRemind}
	default:
		return Command{Kind: CommandHelp}
	}
}

// parseAddLegacy handles the pipe format:
//
//	add: Title | cat: Trabajo | due: 2025-08-15 | impact: High | info: x,y | tags: a,b | effort: 3
func parseAddLegacy(body string, today time.Time) Payload {
	parts := strings.Split(body, "|")
	payload := Payload{Title: strings.TrimSpace(parts[0])}

	for _, part := range parts[1:] {
		key, value, found := strings.Cut(part, ":")
		if !found {
			continue
		}
		key = Normalize(key)
		value = strings.TrimSpace(value)
		switch {
		case strings.HasPrefix(key, "cat"):
			payload.Category = value
		case key == "due" || strings.Contains(key, "fecha"):
			if iso, ok := ParseDate(value, today); ok {
				payload.DueDate = iso
			}
		case strings.Contains(key, "impact"):
			payload.Impact = value
		case strings.Contains(key, "info"):
			payload.RequiredInfo = splitList(value)
		case strings.Contains(key, "tags") || strings.Contains(key, "etiquetas"):
			payload.Tags = splitList(value)
		case strings.Contains(key, "esfuerzo") || strings.Contains(key, "effort"):
			if n, err := strconv.Atoi(value); err == nil {
				payload.Effort = n
			}
		}
	}
	return payload
}

// parseAddNatural handles the conversational form:
//
//	agregar Presentacion sabado, categoria escuela, fecha 15/08/2025, impacto alto, esfuerzo 3, info x,y
//
// The title is everything after the verb up to the first comma; attributes are
// keyword-scanned from the rest.
func parseAddNatural(body string, today time.Time) Payload {
	normalized := Normalize(body)

	words := strings.Fields(body)
	skip := 1
	if len(words) >= 2 {
		first := Normalize(words[0])
		if (first == "crear" || first == "nueva") && Normalize(words[1]) == "tarea" {
			skip = 2
		}
	}
	title := strings.Join(words[skip:], " ")
	if idx := strings.Index(title, ","); idx >= 0 {
		title = title[:idx]
	}
	title = strings.TrimSpace(title)

	payload := Payload{Title: title}

	if m := categoryPattern.FindStringSubmatch(normalized); m != nil {
		payload.Category = m[1]
	}
	// A title can contain "para" or "el"; take the first clause that actually
	// parses as a date.
	for _, m := range datePattern.FindAllStringSubmatch(normalized, -1) {
		if iso, ok := ParseDate(m[1], today); ok {
			payload.DueDate = iso
			break
		}
	}
	if m := impactPattern.FindStringSubmatch(normalized); m != nil {
		payload.Impact = m[1]
	}
	if m := effortPattern.FindStringSubmatch(normalized); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			payload.Effort = n
		}
	}
	if m := infoPattern.FindStringSubmatch(normalized); m != nil {
		payload.RequiredInfo = splitList(m[1])
	}
	if m := tagsPattern.FindStringSubmatch(normalized); m != nil {
		payload.Tags = splitList(m[1])
	}
	return payload
}

func splitList(value string) []string {
	items := make([]string, 0)
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// HelpText is the fallback webhook reply describing the command grammar.
const HelpText = "Comandos:\n" +
	"• agregar <título>, categoría <Escuela/Trabajo>, fecha <dd/mm/aaaa|hoy|mañana|próximo sábado>, impacto <bajo/medio/alto/crítico>, esfuerzo <1-8>, info <a,b>\n" +
	"• recordar\n" +
	"• recibi: <info> para <id>\n" +
	"• (también funciona el formato: add: Título | cat: ... | due: ...)"
