package services

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"math/rand"
	"os"
	"strings"

	_ "image/jpeg"
	_ "image/png"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"

	"github.com/emaratgreen/esg-backend/internal/logger"
	"github.com/emaratgreen/esg-backend/internal/types"
	"github.com/emaratgreen/esg-backend/internal/utils"
)

// avatarPalette is the set of background colors initials avatars draw from.
var avatarPalette = []color.NRGBA{
	{R: 0x0F, G: 0x76, B: 0x4E, A: 0xFF}, // green
	{R: 0x1D, G: 0x4E, B: 0x89, A: 0xFF}, // blue
	{R: 0xB4, G: 0x5F, B: 0x06, A: 0xFF}, // amber
	{R: 0x6B, G: 0x21, B: 0xA8, A: 0xFF}, // purple
	{R: 0x9F, G: 0x12, B: 0x39, A: 0xFF}, // crimson
	{R: 0x0E, G: 0x74, B: 0x90, A: 0xFF}, // teal
}

type AvatarService interface {
	ApplyGeneratedAvatar(user *types.User) error
	ApplyUploadedAvatar(user *types.User, raw []byte) error
}

type avatarService struct {
	log      *logger.Logger
	fontFace font.Face
}

// NewAvatarService loads the optional AVATAR_FONT ttf. Without it, avatars
// render as plain colored circles instead of initials.
func NewAvatarService(log *logger.Logger) AvatarService {
	serviceLog := log.With("service", "AvatarService")
	service := &avatarService{log: serviceLog}

	fontPath := utils.GetEnv("AVATAR_FONT", "", serviceLog)
	if strings.TrimSpace(fontPath) != "" {
		face, err := loadFontFace(fontPath, 206)
		if err != nil {
			serviceLog.Warn("Could not load avatar font, rendering without initials",
				"font", fontPath, "error", err)
		} else {
			service.fontFace = face
		}
	}
	return service
}

// ApplyGeneratedAvatar renders an initials avatar and stores it inline on the
// user as a data URL, so no object store round-trip is needed to display it.
func (as *avatarService) ApplyGeneratedAvatar(user *types.User) error {
	const size = 512
	as.ensureAvatarColor(user)

	dc := gg.NewContext(size, size)
	dc.DrawCircle(float64(size)/2, float64(size)/2, float64(size)/2)
	dc.Clip()

	dc.SetColor(as.pickColor(user.AvatarColor))
	dc.DrawRectangle(0, 0, float64(size), float64(size))
	dc.Fill()

	if as.fontFace != nil {
		initials := computeInitials(user.FirstName, user.LastName)
		dc.SetFontFace(as.fontFace)
		tw, th := dc.MeasureString(initials)
		cx, cy := float64(size)/2, float64(size)/2
		dc.SetColor(color.White)
		dc.DrawString(initials, cx-(tw/2), cy+(th/2)-10)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return fmt.Errorf("failed to encode PNG: %w", err)
	}
	user.AvatarDataURL = encodeDataURL(buf.Bytes())
	return nil
}

// ApplyUploadedAvatar center-crops, resizes and circle-clips a user-supplied
// image before storing it inline.
func (as *avatarService) ApplyUploadedAvatar(user *types.User, raw []byte) error {
	const size = 512

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("decode image: %w", err)
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	side := w
	if h < w {
		side = h
	}
	x0 := b.Min.X + (w-side)/2
	y0 := b.Min.Y + (h-side)/2

	cropRect := image.Rect(0, 0, side, side)
	cropped := image.NewRGBA(cropRect)
	draw.Draw(cropped, cropRect, img, image.Point{X: x0, Y: y0}, draw.Src)

	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), cropped, cropped.Bounds(), draw.Over, nil)

	dc := gg.NewContext(size, size)
	dc.DrawCircle(float64(size)/2, float64(size)/2, float64(size)/2)
	dc.Clip()
	dc.DrawImage(dst, 0, 0)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	user.AvatarDataURL = encodeDataURL(buf.Bytes())
	return nil
}

func encodeDataURL(png []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
}

func (as *avatarService) ensureAvatarColor(user *types.User) {
	if normalizeHex(user.AvatarColor) != "" {
		user.AvatarColor = normalizeHex(user.AvatarColor)
		return
	}
	pick := avatarPalette[rand.Intn(len(avatarPalette))]
	user.AvatarColor = nrgbaToHex(pick)
}

func (as *avatarService) pickColor(hexStr string) color.NRGBA {
	if h := normalizeHex(hexStr); h != "" {
		if r, g, b, err := parseHexRGB(h); err == nil {
			return color.NRGBA{R: r, G: g, B: b, A: 0xFF}
		}
	}
	return avatarPalette[rand.Intn(len(avatarPalette))]
}

func normalizeHex(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	s = strings.ToUpper(s)
	if len(s) != 7 {
		return ""
	}
	if _, _, _, err := parseHexRGB(s); err != nil {
		return ""
	}
	return s
}

func parseHexRGB(s string) (r, g, b uint8, err error) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return 0, 0, 0, fmt.Errorf("expected 6 hex chars")
	}
	var rv, gv, bv int
	if _, err := fmt.Sscanf(s, "%02x%02x%02x", &rv, &gv, &bv); err != nil {
		return 0, 0, 0, fmt.Errorf("invalid hex")
	}
	return uint8(rv), uint8(gv), uint8(bv), nil
}

func nrgbaToHex(c color.NRGBA) string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

func computeInitials(first, last string) string {
	fInit := "?"
	if len(first) > 0 {
		fInit = strings.ToUpper(first[:1])
	}
	lInit := "?"
	if len(last) > 0 {
		lInit = strings.ToUpper(last[:1])
	}
	return fInit + lInit
}

func loadFontFace(fontPath string, size float64) (font.Face, error) {
	fontBytes, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read font file: %w", err)
	}
	parsedFont, err := truetype.Parse(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TTF: %w", err)
	}
	return truetype.NewFace(parsedFont, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	}), nil
}
