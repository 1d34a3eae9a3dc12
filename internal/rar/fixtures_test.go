package rar

// Transcripts in the shape printed by `unrar lt`.

const listingHeader = `
UNRAR 6.24 freeware      Copyright (c) 1993-2023 Alexander Roshal

Archive: /data/test.rar
Details: RAR 5

`

const twoEntryListing = listingHeader +
	`        Name: docs/readme.txt
        Type: File
        Size: 1024
 Packed size: 512
       Ratio: 50%
       mtime: 2023-01-15 10:30:45,123456789
  Attributes: -rw-r--r--
       CRC32: 1A2B3C4D
     Host OS: Unix
 Compression: RAR 5.0(v50) -m3 -md=128K

        Name: image.png
        Type: File
        Size: 2048
 Packed size: 2048
       Ratio: 100%
       mtime: 2023-02-01 08:00:00,000000000
  Attributes: -rw-r--r--
       CRC32: DEADBEEF
     Host OS: Unix
 Compression: RAR 5.0(v50) -m0 -md=128K

`

const directoryListing = listingHeader +
	`        Name: docs
        Type: Directory
        Size: 0
 Packed size: 0
       mtime: 2023-01-15 10:00:00,000000000
  Attributes: drwxr-xr-x
     Host OS: Unix

`

const mixedListing = listingHeader +
	`        Name: docs
        Type: Directory
        Size: 0
 Packed size: 0
       mtime: 2023-01-15 10:00:00,000000000

        Name: docs/readme.txt
        Type: File
        Size: 1024
 Packed size: 512
       mtime: 2023-01-15 10:30:45,123456789
       CRC32: 1A2B3C4D

        Name: notes.txt
        Type: File
        Size: 10
 Packed size: 10
       mtime: 2023-03-10 09:15:00,000000000
       CRC32: 0BADF00D

`
