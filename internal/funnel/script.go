package funnel

import (
	"errors"
	"fmt"
	"strings"
)

// State is the funnel's position in the scripted conversation.
type State string

const (
	StateGreeting           State = "greeting"
	StateCollectingName     State = "collecting_name"
	StateCollectingPhone    State = "collecting_phone"
	StateCollectingInterest State = "collecting_interest"
	StateComplete           State = "complete"
)

// Sender identifies who wrote a transcript message.
type Sender string

const (
	SenderAssistant Sender = "assistant"
	SenderVisitor   Sender = "visitor"
)

// Message is one transcript entry. Entries are only ever appended.
type Message struct {
	Sender Sender `json:"sender"`
	Text   string `json:"text"`
}

// Interest options offered once name and phone are known, in display order.
const (
	InterestMemberships      = "Membresías"
	InterestPersonalTraining = "Entrenamiento Personal"
	InterestGroupClasses     = "Clases Grupales"
	InterestHoursInfo        = "Horarios e Información"
	InterestOther            = "Otro"
)

var interestOptions = []string{
	InterestMemberships,
	InterestPersonalTraining,
	InterestGroupClasses,
	InterestHoursInfo,
	InterestOther,
}

// InterestOptions returns the fixed option list.
func InterestOptions() []string {
	return append([]string(nil), interestOptions...)
}

func isInterestOption(option string) bool {
	for _, o := range interestOptions {
		if o == option {
			return true
		}
	}
	return false
}

var (
	// ErrEmptyInput is returned for blank visitor text; nothing changes.
	ErrEmptyInput = errors.New("input is empty")

	// ErrBusy is returned while an assistant message is still being composed.
	ErrBusy = errors.New("assistant is composing")

	// ErrUnexpectedInput is returned when the current state takes no such input.
	ErrUnexpectedInput = errors.New("input not expected in current state")

	// ErrInvalidSelection is returned for an interest outside the fixed options.
	ErrInvalidSelection = errors.New("not an interest option")
)

// Scripted assistant lines.
const (
	lineWelcome     = "¡Hola! 👋 Soy Marcos, tu asistente virtual de Elite Gym."
	lineAskName     = "Me encantaría ayudarte. Para empezar, ¿cuál es tu nombre completo?"
	lineGreetName   = "¡Mucho gusto, %s! 💪"
	lineAskPhone    = "¿Me podrías compartir tu número de teléfono para contactarte?"
	linePhoneDone   = "¡Perfecto! Último paso 🎯"
	lineAskInterest = "¿Cuál es el tema de tu interés?"
	lineConfirm     = "¡Excelente elección! Hemos registrado tu interés en \"%s\"."
	lineSending     = "Gracias %s, estamos enviando tu información a un asesor vía WhatsApp... 📲"
	lineDone        = "¡Listo! Se abrió WhatsApp con tu información. Un asesor de Elite Gym te responderá muy pronto. ¡Que tengas un gran día! 🏋️‍♂️"
)

// Input prompt hints per state.
const (
	placeholderName  = "Escribe tu nombre completo..."
	placeholderPhone = "Ej: 311 624 8414"
)

// Lead is what the funnel collects, one field per step.
type Lead struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Interest string `json:"interest"`
}

// Text formats the lead as the WhatsApp message handed to the sales team.
func (l Lead) Text() string {
	return strings.Join([]string{
		"🏋️ *Nuevo Lead — Elite Gym*",
		"",
		fmt.Sprintf("👤 *Nombre:* %s", l.Name),
		fmt.Sprintf("📞 *Teléfono:* %s", l.Phone),
		fmt.Sprintf("🎯 *Interés:* %s", l.Interest),
		"",
		"_Mensaje enviado desde el asistente virtual del sitio web._",
	}, "\n")
}
