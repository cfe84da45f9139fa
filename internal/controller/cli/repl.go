package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/Freeeeeet/slot_booking/internal/formatting"
	"github.com/Freeeeeet/slot_booking/internal/model"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

// Reservations операции сервиса, которые нужны меню
type Reservations interface {
	ListAvailable(ctx context.Context, date string) []*model.Slot
	ListBookings(ctx context.Context) []*model.Slot
	FindSlot(ctx context.Context, id int64) *model.Slot
	Book(ctx context.Context, id int64, name, service string) bool
	CancelBySlot(ctx context.Context, id int64) bool
	CancelByCustomer(ctx context.Context, name string) int
}

type styles struct {
	title   lipgloss.Style
	option  lipgloss.Style
	success lipgloss.Style
	failure lipgloss.Style
	faint   lipgloss.Style
}

func newStyles(out io.Writer) styles {
	renderer := lipgloss.NewRenderer(out)
	return styles{
		title:   renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		option:  renderer.NewStyle().Foreground(lipgloss.Color("14")),
		success: renderer.NewStyle().Foreground(lipgloss.Color("10")),
		failure: renderer.NewStyle().Foreground(lipgloss.Color("9")),
		faint:   renderer.NewStyle().Faint(true),
	}
}

// REPL интерактивное меню поверх сервиса бронирования.
// Записи идут напрямую в сервис, без очереди.
type REPL struct {
	reservations Reservations
	in           *bufio.Scanner
	out          io.Writer
	styles       styles
	logger       *zap.Logger
}

func NewREPL(reservations Reservations, in io.Reader, out io.Writer, logger *zap.Logger) *REPL {
	return &REPL{
		reservations: reservations,
		in:           bufio.NewScanner(in),
		out:          out,
		styles:       newStyles(out),
		logger:       logger,
	}
}

// Run крутит меню до выбора выхода, конца ввода или отмены контекста
func (r *REPL) Run(ctx context.Context) error {
	r.println(r.styles.title.Render("Slot booking"))
	r.println("")

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		r.printMenu()
		choice, ok := r.prompt("> ")
		if !ok {
			r.println("Goodbye")
			return r.in.Err()
		}

		switch strings.ToLower(choice) {
		case "1":
			r.listAvailable(ctx)
		case "2":
			r.book(ctx)
		case "3":
			r.cancel(ctx)
		case "4":
			r.listBookings(ctx)
		case "5", "q", "quit", "exit":
			r.println("Goodbye")
			return nil
		case "":
			continue
		default:
			r.println(r.styles.failure.Render("Unknown option. Choose 1-5."))
		}
		r.println("")
	}
}

func (r *REPL) printMenu() {
	r.println("Choose an option:")
	for i, label := range []string{
		"Show available slots",
		"Book a slot",
		"Cancel a booking",
		"List bookings",
		"Exit",
	} {
		r.println("  " + r.styles.option.Render(strconv.Itoa(i+1)+")") + " " + label)
	}
}

func (r *REPL) listAvailable(ctx context.Context) {
	date, _ := r.prompt("Filter by date (YYYY-MM-DD) or Enter for all: ")

	slots := r.reservations.ListAvailable(ctx, date)
	if len(slots) == 0 {
		if date != "" {
			r.println("No available slots for that date.")
		} else {
			r.println("No available slots.")
		}
		return
	}
	r.printSlots(slots)
}

func (r *REPL) listBookings(ctx context.Context) {
	bookings := r.reservations.ListBookings(ctx)
	if len(bookings) == 0 {
		r.println("No active bookings.")
		return
	}
	r.printSlots(bookings)
}

func (r *REPL) book(ctx context.Context) {
	id, ok := r.promptID("Slot ID to book: ")
	if !ok {
		r.println(r.styles.failure.Render("Invalid slot ID."))
		return
	}

	slot := r.reservations.FindSlot(ctx, id)
	if slot == nil {
		r.println(r.styles.failure.Render("Slot not found."))
		return
	}
	if !slot.IsAvailable() {
		r.println(r.styles.failure.Render("That slot is already booked."))
		return
	}

	name, _ := r.prompt("Customer name: ")
	if name == "" {
		r.println(r.styles.failure.Render("Name cannot be empty."))
		return
	}
	if utf8.RuneCountInString(name) > model.MaxCustomerNameLength {
		r.println(r.styles.failure.Render(fmt.Sprintf("Name must not exceed %d characters.", model.MaxCustomerNameLength)))
		return
	}

	raw, _ := r.prompt(fmt.Sprintf("Service (%s) [%s]: ", strings.Join(model.AllowedServices, ", "), model.DefaultService))
	service, ok := model.CanonicalService(raw)
	if !ok {
		r.println(r.styles.failure.Render("Unknown service."))
		return
	}

	if !r.reservations.Book(ctx, id, name, service) {
		r.println(r.styles.failure.Render("Could not book the slot."))
		return
	}

	r.logger.Info("Slot booked from CLI", zap.Int64("slot_id", id), zap.String("customer", name))
	if booked := r.reservations.FindSlot(ctx, id); booked != nil {
		r.println(r.styles.success.Render("Slot booked: ") + formatting.FormatSlot(booked))
	} else {
		r.println(r.styles.success.Render("Slot booked."))
	}
}

func (r *REPL) cancel(ctx context.Context) {
	mode, _ := r.prompt("Cancel by (1) slot ID or (2) customer name? ")

	switch mode {
	case "1":
		id, ok := r.promptID("Slot ID to cancel: ")
		if ok && r.reservations.CancelBySlot(ctx, id) {
			r.println(r.styles.success.Render("Booking cancelled."))
			return
		}
		r.println(r.styles.failure.Render("Could not cancel (invalid ID or slot not booked)."))

	case "2":
		name, _ := r.prompt("Customer name: ")
		if name == "" {
			r.println(r.styles.failure.Render("Name cannot be empty."))
			return
		}
		n := r.reservations.CancelByCustomer(ctx, name)
		r.println(fmt.Sprintf("Bookings cancelled: %d", n))

	default:
		r.println(r.styles.failure.Render("Invalid option."))
	}
}

func (r *REPL) printSlots(slots []*model.Slot) {
	for _, slot := range slots {
		r.println(formatting.FormatSlot(slot))
	}
	r.println(r.styles.faint.Render(fmt.Sprintf("(%d)", len(slots))))
}

// prompt печатает приглашение и читает одну строку без пробелов по краям.
// false означает конец ввода.
func (r *REPL) prompt(text string) (string, bool) {
	fmt.Fprint(r.out, text)
	if !r.in.Scan() {
		fmt.Fprintln(r.out)
		return "", false
	}
	return strings.TrimSpace(r.in.Text()), true
}

func (r *REPL) promptID(text string) (int64, bool) {
	raw, ok := r.prompt(text)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func (r *REPL) println(line string) {
	fmt.Fprintln(r.out, line)
}
