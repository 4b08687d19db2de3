package yangcontext

// The built-in modules preloaded into every context. The sources are kept
// as plain text; they are parsed once at context creation.

type builtinModule struct {
	name        string
	data        string
	implemented bool
}

// internalModuleSources returns the built-in set. The yang-library pair
// is left out when the context is created with NoYangLibrary.
func internalModuleSources(withYangLibrary bool) []builtinModule {
	mods := []builtinModule{
		{name: "ietf-yang-metadata", data: builtinYangMetadata, implemented: true},
		{name: "yang", data: builtinYang, implemented: true},
		{name: "ietf-inet-types", data: builtinInetTypes},
		{name: "ietf-yang-types", data: builtinYangTypes},
	}
	if withYangLibrary {
		mods = append(mods,
			builtinModule{name: "ietf-datastores", data: builtinDatastores, implemented: true},
			builtinModule{name: "ietf-yang-library", data: builtinYangLibrary, implemented: true},
		)
	}
	return mods
}

const builtinYangMetadata = `
module ietf-yang-metadata {
  namespace "urn:ietf:params:xml:ns:yang:ietf-yang-metadata";
  prefix md;

  organization
    "IETF NETMOD (NETCONF Data Modeling Language) Working Group";
  description
    "This YANG module defines an extension statement that allows for
     defining metadata annotations.";

  revision 2016-08-05 {
    description
      "Initial revision.";
  }

  extension annotation {
    argument name;
    description
      "This extension allows for defining metadata annotations in
       YANG modules.";
  }
}
`

const builtinYang = `
module yang {
  namespace "urn:ietf:params:xml:ns:yang:1";
  prefix yang;

  import ietf-yang-metadata {
    prefix md;
  }

  description
    "This module holds the metadata annotations attached to data
     nodes of the data trees.";

  revision 2021-04-07 {
    description
      "Initial revision.";
  }

  md:annotation operation {
    type string;
    description
      "The edit operation applied to the data node.";
  }

  md:annotation insert {
    type string;
    description
      "The insertion point of a user-ordered list or leaf-list entry.";
  }
}
`

const builtinInetTypes = `
module ietf-inet-types {
  namespace "urn:ietf:params:xml:ns:yang:ietf-inet-types";
  prefix inet;

  organization
    "IETF NETMOD (NETCONF Data Modeling Language) Working Group";
  description
    "This module contains a collection of generally useful derived
     YANG data types for Internet addresses and related things.";

  revision 2013-07-15 {
    description
      "Second revision.";
  }

  typedef ip-version {
    type enumeration {
      enum unknown {
        value "0";
      }
      enum ipv4 {
        value "1";
      }
      enum ipv6 {
        value "2";
      }
    }
  }

  typedef port-number {
    type uint16 {
      range "0..65535";
    }
  }

  typedef ipv4-address {
    type string;
  }

  typedef ipv6-address {
    type string;
  }

  typedef ip-address {
    type union {
      type inet:ipv4-address;
      type inet:ipv6-address;
    }
  }

  typedef ip-prefix {
    type string;
  }

  typedef domain-name {
    type string {
      length "1..253";
    }
  }

  typedef host {
    type union {
      type inet:ip-address;
      type inet:domain-name;
    }
  }

  typedef uri {
    type string;
  }
}
`

const builtinYangTypes = `
module ietf-yang-types {
  namespace "urn:ietf:params:xml:ns:yang:ietf-yang-types";
  prefix yang;

  organization
    "IETF NETMOD (NETCONF Data Modeling Language) Working Group";
  description
    "This module contains a collection of generally useful derived
     YANG data types.";

  revision 2013-07-15 {
    description
      "Second revision.";
  }

  typedef counter32 {
    type uint32;
  }

  typedef counter64 {
    type uint64;
  }

  typedef gauge32 {
    type uint32;
  }

  typedef gauge64 {
    type uint64;
  }

  typedef date-and-time {
    type string;
  }

  typedef timeticks {
    type uint32;
  }

  typedef phys-address {
    type string;
  }

  typedef mac-address {
    type string;
  }

  typedef hex-string {
    type string;
  }

  typedef uuid {
    type string;
  }

  typedef dotted-quad {
    type string;
  }

  typedef yang-identifier {
    type string {
      length "1..max";
    }
  }
}
`

const builtinDatastores = `
module ietf-datastores {
  namespace "urn:ietf:params:xml:ns:yang:ietf-datastores";
  prefix ds;

  organization
    "IETF Network Modeling (NETMOD) Working Group";
  description
    "This YANG module defines a set of identities for datastores.";

  revision 2018-02-14 {
    description
      "Initial revision.";
  }

  identity datastore {
    description
      "Abstract base identity for datastore identities.";
  }

  identity conventional {
    base datastore;
  }

  identity running {
    base conventional;
  }

  identity candidate {
    base conventional;
  }

  identity startup {
    base conventional;
  }

  identity intended {
    base conventional;
  }

  identity dynamic {
    base datastore;
  }

  identity operational {
    base datastore;
  }
}
`

const builtinYangLibrary = `
module ietf-yang-library {
  namespace "urn:ietf:params:xml:ns:yang:ietf-yang-library";
  prefix yanglib;

  import ietf-inet-types {
    prefix inet;
  }
  import ietf-datastores {
    prefix ds;
  }

  organization
    "IETF NETCONF (Network Configuration) Working Group";
  description
    "This module provides information about the YANG modules,
     datastores, and datastore schemas used by a network
     management server.";

  revision 2019-01-04 {
    description
      "Added support for multiple datastores according to the
       Network Management Datastore Architecture (NMDA).";
  }

  typedef revision-identifier {
    type string;
  }

  container yang-library {
    config false;
    description
      "Container holding the entire YANG library of this server.";

    list module-set {
      key "name";

      leaf name {
        type string;
      }

      list module {
        key "name";

        leaf name {
          type string;
        }
        leaf revision {
          type revision-identifier;
        }
        leaf namespace {
          type inet:uri;
        }
        leaf-list feature {
          type string;
        }
        leaf-list deviation {
          type string;
        }
        list submodule {
          key "name";

          leaf name {
            type string;
          }
          leaf revision {
            type revision-identifier;
          }
        }
      }

      list import-only-module {
        key "name revision";

        leaf name {
          type string;
        }
        leaf revision {
          type string;
        }
        leaf namespace {
          type inet:uri;
        }
        list submodule {
          key "name";

          leaf name {
            type string;
          }
          leaf revision {
            type revision-identifier;
          }
        }
      }
    }

    list datastore {
      key "name";

      leaf name {
        type identityref {
          base ds:datastore;
        }
      }
      leaf schema {
        type string;
      }
    }

    leaf content-id {
      type string;
      mandatory true;
      description
        "A server-generated identifier of the contents of the
         YANG library.";
    }
  }

  container modules-state {
    config false;
    status deprecated;
    description
      "Legacy container holding the state of the YANG modules.";

    leaf module-set-id {
      type string;
      mandatory true;
    }

    list module {
      key "name revision";

      leaf name {
        type string;
      }
      leaf revision {
        type string;
      }
      leaf namespace {
        type inet:uri;
      }
      leaf-list feature {
        type string;
      }
      list deviation {
        key "name revision";

        leaf name {
          type string;
        }
        leaf revision {
          type string;
        }
      }
      leaf conformance-type {
        type enumeration {
          enum implement;
          enum import;
        }
      }
      list submodule {
        key "name revision";

        leaf name {
          type string;
        }
        leaf revision {
          type string;
        }
      }
    }
  }
}
`
