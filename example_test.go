package litedb_test

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/hupe1980/litedb"
	"github.com/hupe1980/litedb/storage"
)

type fruit struct {
	Name  string  `json:"name"`
	Color string  `json:"color"`
	Price float64 `json:"price"`
}

// Example_table demonstrates inserting and querying records.
func Example_table() {
	ctx := context.Background()

	tbl, err := litedb.CreateTable[fruit](ctx, storage.NewMemoryStore())
	if err != nil {
		log.Fatal(err)
	}

	if _, err := tbl.InsertMany(ctx,
		fruit{"apple", "red", 0.5},
		fruit{"banana", "yellow", 0.25},
		fruit{"cherry", "red", 3},
		fruit{"lemon", "yellow", 0.75},
	); err != nil {
		log.Fatal(err)
	}

	seq, err := tbl.Retrieve(ctx, litedb.Eq("Color", "red"), litedb.Range("Price", nil, 1.0))
	if err != nil {
		log.Fatal(err)
	}
	for f, err := range seq {
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(f.Name)
	}
	// Output: apple
}

// Example_freeSlots demonstrates slot reuse after a delete.
func Example_freeSlots() {
	ctx := context.Background()

	tbl, err := litedb.CreateTable[fruit](ctx, storage.NewMemoryStore())
	if err != nil {
		log.Fatal(err)
	}

	slots, _ := tbl.InsertMany(ctx, fruit{Name: "a"}, fruit{Name: "b"}, fruit{Name: "c"})
	fmt.Println(slots)

	n, _ := tbl.Delete(ctx, litedb.Eq("Name", "b"))
	fmt.Println(n, tbl.Len())

	slot, _ := tbl.Insert(ctx, fruit{Name: "d"})
	fmt.Println(slot)
	// Output:
	// [0 1 2]
	// 1 2
	// 1
}

// Example_queryErrors demonstrates the errors returned for invalid queries.
func Example_queryErrors() {
	ctx := context.Background()

	tbl, err := litedb.CreateTable[fruit](ctx, storage.NewMemoryStore())
	if err != nil {
		log.Fatal(err)
	}
	if _, err := tbl.Insert(ctx, fruit{"apple", "red", 0.5}); err != nil {
		log.Fatal(err)
	}

	_, err = tbl.Retrieve(ctx, litedb.Eq("Weight", 1))
	fmt.Println(errors.Is(err, litedb.ErrUnknownIndex))

	_, err = tbl.Retrieve(ctx, litedb.Range("Price", 1.0))
	fmt.Println(errors.Is(err, litedb.ErrInvalidRange))

	_, err = tbl.Retrieve(ctx, litedb.Eq("Price", "cheap"))
	fmt.Println(errors.Is(err, litedb.ErrTypeMismatch))
	// Output:
	// true
	// true
	// true
}

// Example_database demonstrates routing records of several types.
func Example_database() {
	ctx := context.Background()

	db, err := litedb.OpenMemory()
	if err != nil {
		log.Fatal(err)
	}

	type vegetable struct {
		Name string `json:"name"`
	}

	if _, err := litedb.Insert(ctx, db, fruit{Name: "apple"}); err != nil {
		log.Fatal(err)
	}
	if _, err := litedb.Insert(ctx, db, vegetable{Name: "leek"}); err != nil {
		log.Fatal(err)
	}

	fruits, err := litedb.Select[fruit](ctx, db)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(db.Len(), len(db.Tables()), fruits.Len())
	// Output: 2 2 1
}
