package agenda

import (
	"bytes"
	"fmt"
	"image/color"
	"sync"
	"time"

	"github.com/Freeeeeet/slot_booking/internal/formatting"
	"github.com/Freeeeeet/slot_booking/internal/model"
	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// SlotLength длительность одного слота на картинке
const SlotLength = time.Hour

// Размеры и отступы
const (
	imageWidth      = 1400
	imageHeight     = 900
	headerHeight    = 100
	leftLabelsWidth = 80
	legendWidth     = 120
	dayPaddingX     = 8
	minSlotHeight   = 8.0
	slotRadius      = 6.0
	shadowOffset    = 3.0
	daysInWeek      = 7
	hourPadding     = 1
	maxNameLength   = 20
)

// Размеры шрифтов
const (
	titleFontSize  = 25.0
	dayFontSize    = 24.0
	hourFontSize   = 18.0
	slotFontSize   = 17.0
	legendFontSize = 12.0
)

var (
	bgColor          = color.RGBA{245, 246, 248, 255}
	textColor        = color.RGBA{80, 85, 90, 220}
	hourLabelColor   = color.RGBA{110, 115, 120, 200}
	hourLineColor    = color.NRGBA{150, 150, 150, 255}
	todayBgColor     = color.NRGBA{255, 99, 71, 125}
	evenDayColor     = color.NRGBA{240, 240, 240, 255}
	oddDayColor      = color.NRGBA{220, 220, 220, 255}
	currentTimeColor = color.NRGBA{255, 80, 80, 200}

	freeColor       = color.RGBA{133, 193, 85, 220}
	bookedColor     = color.RGBA{255, 182, 193, 255}
	slotTextColor   = color.RGBA{20, 24, 28, 230}
	bookedTextColor = color.RGBA{120, 40, 50, 255}
	shadowColor     = color.RGBA{0, 0, 0, 20}
	legendItemColor = color.RGBA{70, 74, 78, 220}
)

type fontWeight int

const (
	weightRegular fontWeight = iota
	weightBold
)

var (
	fontsOnce   sync.Once
	parsedFonts map[fontWeight]*opentype.Font
)

// Week границы отображаемой недели, понедельник..воскресенье
type Week struct {
	Start time.Time
	End   time.Time
}

// WeekOf возвращает неделю (Пн-Вс), в которую попадает day
func WeekOf(day time.Time) Week {
	d := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())

	offset := int(d.Weekday()) - 1
	if d.Weekday() == time.Sunday {
		offset = 6
	}

	start := d.AddDate(0, 0, -offset)
	return Week{Start: start, End: start.AddDate(0, 0, daysInWeek)}
}

// Contains проверяет, попадает ли момент в неделю
func (w Week) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

type hourRange struct {
	start int
	end   int
	total int
}

type layout struct {
	week       Week
	now        time.Time
	hours      hourRange
	dayWidth   int
	dayHeight  int
	cellHeight float64
}

// RenderWeek рисует PNG с сеткой недели: свободные слоты зелёные, занятые розовые с именем клиента.
// now нужен для подсветки текущего дня и линии текущего времени.
func RenderWeek(week Week, slots []*model.Slot, now time.Time) ([]byte, error) {
	byDay := make(map[string][]*model.Slot)
	inWeek := make([]*model.Slot, 0, len(slots))
	for _, slot := range slots {
		if week.Contains(slot.When) {
			key := formatting.FormatDate(slot.When)
			byDay[key] = append(byDay[key], slot)
			inWeek = append(inWeek, slot)
		}
	}

	l := layout{
		week:      week,
		now:       now,
		hours:     hoursFor(inWeek),
		dayWidth:  (imageWidth - leftLabelsWidth - legendWidth) / daysInWeek,
		dayHeight: imageHeight - headerHeight,
	}
	l.cellHeight = float64(l.dayHeight) / float64(l.hours.total)

	dc := gg.NewContext(imageWidth, imageHeight)
	dc.SetColor(bgColor)
	dc.Clear()

	drawHeader(dc, week)
	drawHourLabels(dc, l)
	for i := 0; i < daysInWeek; i++ {
		day := week.Start.AddDate(0, 0, i)
		drawDay(dc, l, i, day, byDay[formatting.FormatDate(day)])
	}
	drawNowLine(dc, l)
	drawLegend(dc, l)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// hoursFor диапазон часов по слотам с запасом сверху и снизу; без слотов рабочий день 9-18
func hoursFor(slots []*model.Slot) hourRange {
	minHour, maxHour := 24, 0
	for _, slot := range slots {
		startMinutes := slot.When.Hour()*60 + slot.When.Minute()
		endHour := min((startMinutes+int(SlotLength.Minutes())+59)/60, 24)
		minHour = min(minHour, slot.When.Hour())
		maxHour = max(maxHour, endHour)
	}

	if minHour == 24 {
		minHour, maxHour = 9, 18
	}

	start := max(minHour-hourPadding, 0)
	end := min(maxHour+hourPadding, 24)
	return hourRange{start: start, end: end, total: end - start}
}

func setFont(dc *gg.Context, size float64, weight fontWeight) {
	fontsOnce.Do(func() {
		parsedFonts = make(map[fontWeight]*opentype.Font)
		if f, err := opentype.Parse(goregular.TTF); err == nil {
			parsedFonts[weightRegular] = f
		}
		if f, err := opentype.Parse(gobold.TTF); err == nil {
			parsedFonts[weightBold] = f
		}
	})

	if f, ok := parsedFonts[weight]; ok {
		face, err := opentype.NewFace(f, &opentype.FaceOptions{
			Size:    size,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err == nil {
			dc.SetFontFace(face)
			return
		}
	}
	dc.SetFontFace(basicfont.Face7x13)
}

func drawHeader(dc *gg.Context, week Week) {
	last := week.End.AddDate(0, 0, -1)
	title := week.Start.Format("January 2006")
	if week.Start.Month() != last.Month() {
		title = week.Start.Format("January") + " - " + last.Format("January 2006")
	}

	setFont(dc, titleFontSize, weightBold)
	dc.SetColor(textColor)
	w, h := dc.MeasureString(title)
	dc.DrawStringAnchored(title, w/2+10, float64(headerHeight)/8+h/2, 0, 0)
}

func drawHourLabels(dc *gg.Context, l layout) {
	setFont(dc, hourFontSize, weightRegular)
	dc.SetColor(hourLabelColor)

	for i := 0; i < l.hours.total; i++ {
		y := float64(headerHeight) + float64(i)*l.cellHeight
		label := fmt.Sprintf("%02d:00", l.hours.start+i)
		dc.DrawStringAnchored(label, float64(leftLabelsWidth)-10, y, 1, 0.5)
	}
}

func drawDay(dc *gg.Context, l layout, index int, day time.Time, slots []*model.Slot) {
	x := float64(leftLabelsWidth + index*l.dayWidth)
	y := float64(headerHeight)

	switch {
	case sameDay(day, l.now):
		dc.SetColor(todayBgColor)
	case index%2 == 0:
		dc.SetColor(evenDayColor)
	default:
		dc.SetColor(oddDayColor)
	}
	dc.DrawRectangle(x, y, float64(l.dayWidth), float64(l.dayHeight))
	dc.Fill()

	setFont(dc, dayFontSize, weightBold)
	dc.SetColor(textColor)
	dc.DrawStringAnchored(day.Format("02.01"), x+float64(l.dayWidth)/2, y, 0.5, -1)
	dc.DrawStringAnchored(day.Format("Mon"), x+float64(l.dayWidth)/2, y, 0.5, -0.2)

	dc.SetLineWidth(0.3)
	dc.SetColor(hourLineColor)
	for i := 0; i <= l.hours.total; i++ {
		hy := y + float64(i)*l.cellHeight
		dc.DrawLine(x, hy, x+float64(l.dayWidth), hy)
		dc.Stroke()
	}

	for _, slot := range slots {
		drawSlot(dc, l, slot, x, y)
	}
}

func drawSlot(dc *gg.Context, l layout, slot *model.Slot, x, y float64) {
	startHour := float64(slot.When.Hour()) + float64(slot.When.Minute())/60
	slotY := y + (startHour-float64(l.hours.start))*l.cellHeight
	slotHeight := max(SlotLength.Hours()*l.cellHeight, minSlotHeight)
	slotWidth := float64(l.dayWidth) - dayPaddingX*2

	fill, text := freeColor, slotTextColor
	if !slot.IsAvailable() {
		fill, text = bookedColor, bookedTextColor
	}

	dc.SetColor(shadowColor)
	dc.DrawRoundedRectangle(x+dayPaddingX+shadowOffset, slotY+2+shadowOffset, slotWidth, slotHeight-4, slotRadius)
	dc.Fill()

	dc.SetColor(fill)
	dc.DrawRoundedRectangle(x+dayPaddingX, slotY+2, slotWidth, slotHeight-4, slotRadius)
	dc.Fill()

	dc.SetColor(darken(fill, 0.8))
	dc.SetLineWidth(1)
	dc.DrawRoundedRectangle(x+dayPaddingX, slotY+2, slotWidth, slotHeight-4, slotRadius)
	dc.Stroke()

	textX := x + dayPaddingX + 8
	textY := slotY + 18

	setFont(dc, slotFontSize, weightBold)
	dc.SetColor(text)
	dc.DrawStringAnchored(fmt.Sprintf("#%d %s", slot.ID, formatting.FormatTime(slot.When)), textX, textY, 0, 0)

	if !slot.IsAvailable() && slotHeight > 25 {
		setFont(dc, slotFontSize-2, weightRegular)
		dc.DrawStringAnchored(truncate(slot.CustomerName()+" · "+slot.Service, maxNameLength), textX, textY+16, 0, 0)
	}
}

func drawNowLine(dc *gg.Context, l layout) {
	if !l.week.Contains(l.now) {
		return
	}

	hour := float64(l.now.Hour()) + float64(l.now.Minute())/60
	if hour < float64(l.hours.start) || hour > float64(l.hours.end) {
		return
	}

	y := float64(headerHeight) + (hour-float64(l.hours.start))*l.cellHeight
	dc.SetColor(currentTimeColor)
	dc.SetLineWidth(2)
	dc.DrawLine(float64(leftLabelsWidth), y, float64(leftLabelsWidth+daysInWeek*l.dayWidth), y)
	dc.Stroke()
}

func drawLegend(dc *gg.Context, l layout) {
	const boxW, boxH = 20.0, 14.0

	x := float64(leftLabelsWidth + daysInWeek*l.dayWidth + 10)
	y := float64(imageHeight) - 78

	setFont(dc, legendFontSize, weightRegular)
	for _, item := range []struct {
		label string
		clr   color.Color
	}{
		{"Free", freeColor},
		{"Booked", bookedColor},
	} {
		dc.SetColor(item.clr)
		dc.DrawRoundedRectangle(x, y, boxW, boxH, 3)
		dc.Fill()

		dc.SetColor(legendItemColor)
		dc.DrawStringAnchored(item.label, x+boxW+8, y+boxH/2+1, 0, 0.2)
		y += boxH + 14
	}
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

func darken(c color.RGBA, factor float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(c.R) * factor),
		G: uint8(float64(c.G) * factor),
		B: uint8(float64(c.B) * factor),
		A: c.A,
	}
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit-3]) + "..."
}
