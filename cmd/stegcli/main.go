package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"steganography-codecs/codec"
	"steganography-codecs/quality"
	"steganography-codecs/stego"
)

// Program entry point

func main() {
	codecName := flag.String("codec", "", "The codec to use (pixel-lsb, wav-lsb, jpeg-segment, appendix, gltf-extras)")
	carrierPath := flag.String("carrier", "", "The filepath to the carrier (or, with -extract, the encoded file) on disk")
	payloadPath := flag.String("payload", "", "The filepath to the file to hide")
	outPath := flag.String("out", "", "The filepath to write the encoded file (or, with -extract, the payload) to")
	extract := flag.Bool("extract", false, "Whether to extract a payload instead of hiding it")
	carrierOut := flag.String("carrier-out", "", "With -extract, the filepath to write the returned carrier to")
	startIndex := flag.Int("start-index", stego.DefaultJPEGStartIndex, "The segment index the jpeg-segment codec inserts comments at")
	capacity := flag.Bool("capacity", false, "Print how many bytes the carrier can hold and exit")
	flag.Parse()

	if len(*codecName) <= 0 || len(*carrierPath) <= 0 {
		flag.PrintDefaults()
		os.Exit(2)
	}

	kind, err := codec.ParseKind(*codecName)
	if err != nil {
		log.Fatal(err)
	}
	var c codec.Codec
	if kind == codec.KindJPEGSegment {
		c = stego.NewJPEGSegment(*startIndex)
	} else if c, err = stego.New(kind); err != nil {
		log.Fatal(err)
	}

	input, err := os.ReadFile(*carrierPath)
	if err != nil {
		log.Fatalf("Failed to read %s: %v", *carrierPath, err)
	}

	switch {
	case *capacity:
		err = printCapacity(c, input)
	case *extract:
		err = dig(c, input, *outPath, *carrierOut)
	default:
		err = hide(c, input, *payloadPath, *outPath)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func hide(c codec.Codec, carrier []byte, payloadPath, outPath string) error {
	if len(payloadPath) <= 0 || len(outPath) <= 0 {
		return errors.New("-payload and -out are required to hide a file")
	}
	payload, err := os.ReadFile(payloadPath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", payloadPath, err)
	}

	encoded, err := c.Encode(carrier, payload)
	if err != nil {
		return err
	}

	if signaler, ok := c.(codec.Signaler); ok {
		original, err := signaler.Signal(carrier)
		if err != nil {
			return err
		}
		modified, err := signaler.Signal(encoded)
		if err != nil {
			return err
		}
		log.Printf("PSNR: %s dB", quality.FormatPSNR(quality.CalculatePSNR(original, modified)))
	}

	return os.WriteFile(outPath, encoded, 0o644)
}

func dig(c codec.Codec, encoded []byte, outPath, carrierOut string) error {
	if len(outPath) <= 0 {
		return errors.New("-out is required to extract a file")
	}
	carrier, payload, err := c.Decode(encoded)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outPath, payload, 0o644); err != nil {
		return err
	}
	if len(carrierOut) > 0 {
		return os.WriteFile(carrierOut, carrier, 0o644)
	}
	return nil
}

func printCapacity(c codec.Codec, carrier []byte) error {
	capacitor, ok := c.(codec.Capacitor)
	if !ok {
		return errors.New("codec cannot report its capacity")
	}
	n, err := capacitor.Capacity(carrier)
	if err != nil {
		return err
	}
	if n == codec.Unbounded {
		fmt.Println("unbounded")
		return nil
	}
	fmt.Println(n)
	return nil
}
