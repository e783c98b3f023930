package cart

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/leafbound/bookstall/internal/domain/catalog"
)

// Persisted format: a JSON array of {"book": Book, "quantity": int} objects,
// matching what the cart page and a fresh Store construction both read.

func encodeLines(lines []Line) []byte {
	var e jx.Encoder
	e.ArrStart()
	for _, ln := range lines {
		e.ObjStart()
		e.FieldStart("book")
		catalog.EncodeBook(&e, ln.Book)
		e.FieldStart("quantity")
		e.Int(ln.Quantity)
		e.ObjEnd()
	}
	e.ArrEnd()
	return e.Bytes()
}

func decodeLines(data []byte) ([]Line, error) {
	d := jx.DecodeBytes(data)
	var lines []Line
	if err := d.Arr(func(d *jx.Decoder) error {
		var ln Line
		if err := d.Obj(func(d *jx.Decoder, key string) error {
			switch key {
			case "book":
				b, err := catalog.DecodeBook(d)
				if err != nil {
					return err
				}
				ln.Book = b
				return nil
			case "quantity":
				q, err := d.Int()
				if err != nil {
					return errors.Wrap(err, "quantity")
				}
				ln.Quantity = q
				return nil
			default:
				return d.Skip()
			}
		}); err != nil {
			return err
		}
		lines = append(lines, ln)
		return nil
	}); err != nil {
		return nil, errors.Wrap(err, "decode cart lines")
	}
	return lines, nil
}
