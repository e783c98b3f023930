package catalog

import (
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
)

// EncodeBook writes the book snapshot as a JSON object. Both cart and
// favorites persist books through this codec so their blobs stay mutually
// readable.
func EncodeBook(e *jx.Encoder, b Book) {
	e.ObjStart()
	e.FieldStart("id")
	e.Int64(b.ID)
	e.FieldStart("title")
	e.Str(b.Title)
	e.FieldStart("author")
	e.Str(b.Author)
	e.FieldStart("price")
	e.RawStr(b.Price.String())
	e.FieldStart("coverImage")
	e.Str(b.CoverImage)
	e.FieldStart("categoryId")
	e.Int64(b.CategoryID)
	e.ObjEnd()
}

// DecodeBook reads a book snapshot object, skipping unknown fields.
func DecodeBook(d *jx.Decoder) (Book, error) {
	var b Book
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "id":
			v, err := d.Int64()
			if err != nil {
				return errors.Wrap(err, "id")
			}
			b.ID = v
		case "title":
			v, err := d.Str()
			if err != nil {
				return errors.Wrap(err, "title")
			}
			b.Title = v
		case "author":
			v, err := d.Str()
			if err != nil {
				return errors.Wrap(err, "author")
			}
			b.Author = v
		case "price":
			p, err := decodePrice(d)
			if err != nil {
				return err
			}
			b.Price = p
		case "coverImage":
			v, err := d.Str()
			if err != nil {
				return errors.Wrap(err, "coverImage")
			}
			b.CoverImage = v
		case "categoryId":
			v, err := d.Int64()
			if err != nil {
				return errors.Wrap(err, "categoryId")
			}
			b.CategoryID = v
		default:
			return d.Skip()
		}
		return nil
	})
	return b, err
}

// decodePrice accepts both a bare JSON number and a quoted numeric string,
// since older persisted blobs carried prices as strings.
func decodePrice(d *jx.Decoder) (decimal.Decimal, error) {
	n, err := d.Num()
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "price")
	}
	raw := strings.Trim(n.String(), `"`)
	p, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, errors.Wrapf(err, "price %q", raw)
	}
	return p, nil
}
