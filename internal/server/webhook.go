package server

import (
	"encoding/xml"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"priorityflow/internal/parser"
	"priorityflow/internal/service"
	"priorityflow/internal/storage"
)

// twiml is the minimal Twilio messaging response document.
type twiml struct {
	XMLName xml.Name `xml:"Response"`
	Message string   `xml:"Message"`
}

// handleWebhook receives an inbound WhatsApp message (Twilio form post),
// interprets it as a planner command, and answers with a TwiML reply.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form body")
		return
	}
	body := strings.TrimSpace(r.PostFormValue("Body"))

	cmd := parser.Parse(body, time.Now())
	reply := s.executeCommand(cmd)
	writeTwiML(w, reply)
}

func (s *Server) executeCommand(cmd parser.Command) string {
	switch cmd.Kind {
	case parser.CommandAdd:
		task, err := s.tasks.CreateFromPayload(cmd.Payload)
		if err != nil {
			s.logger.Warn("webhook create failed", "error", err)
			return "❌ No pude crear la tarea: " + err.Error()
		}
		return fmt.Sprintf("✅ Tarea creada #%d: %s · %s · %s (score %d)",
			task.ID, task.Title, task.Category, task.PriorityLabel, int(task.PriorityScore))

	case parser.CommandReceiveInfo:
		task, err := s.tasks.ReceiveInfo(cmd.TaskID, cmd.InfoItem)
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Sprintf("❌ No encontré la tarea %d.", cmd.TaskID)
		}
		if err != nil {
			s.logger.Warn("webhook receive-info failed", "error", err)
			return "❌ No pude registrar la información."
		}
		return fmt.Sprintf("📥 Registrado '%s' para tarea #%d. Prioridad: %s (%d) · Estado: %s",
			cmd.InfoItem, task.ID, task.PriorityLabel, int(task.PriorityScore), task.Status)

	case parser.CommandRemind:
		top, err := s.tasks.Top()
		if err != nil {
			s.logger.Warn("webhook remind failed", "error", err)
			return "❌ No pude consultar las tareas."
		}
		if len(top) == 0 {
			return "No hay tareas pendientes."
		}
		lines := make([]string, 0, len(top))
		for _, t := range top {
			lines = append(lines, service.FormatTaskLine(t))
		}
		return fmt.Sprintf("🗒 Top %d:\n%s", len(top), strings.Join(lines, "\n"))

	default:
		return parser.HelpText
	}
}

func writeTwiML(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(xml.Header))
	_ = xml.NewEncoder(w).Encode(twiml{Message: message})
}
