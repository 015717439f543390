// Package gaiachat embeds the GaiaChat catalog searches in a Go program
// without running the HTTP server.
//
// The client talks to a TAP service (the ESA Gaia archive by default),
// builds the ADQL for each canned search and derives Galactocentric
// velocities for the stream, halo and hypervelocity selections.
//
//	client, _ := gaiachat.New(gaiachat.WithTimeout(2 * time.Minute))
//	res, _ := client.Stream(ctx, "Helmi", 500)
//	for _, row := range res.Rows() {
//	    fmt.Println(row["source_id"], row["V_phi"])
//	}
//	_ = res.Write(os.Stdout, gaiachat.FormatCSV)
//
// V_phi is positive along the direction of disk rotation.
package gaiachat
